package service

import "errors"

// Service-level sentinel errors. Handlers translate these into RFC 7807
// problem responses.
var (
	ErrNotFound           = errors.New("recurso não encontrado")
	ErrInvalidInput       = errors.New("dados inválidos")
	ErrPedidoJaAprovado   = errors.New("Este pedido já está aprovado")
	ErrMedicaoJaAprovada  = errors.New("Esta medição já está aprovada")
	ErrOrcamentoExcedido  = errors.New("quantidade excede o saldo disponível do item")
	ErrItemIndisponivel   = errors.New("item de custo com realização igual ou superior a 100%")
	ErrConflitoVersao     = errors.New("o item foi alterado por outra operação, tente novamente")
	ErrCNPJDuplicado      = errors.New("já existe um fornecedor com este CNPJ")
	ErrParcelasDivergem   = errors.New("a soma das parcelas difere do valor total")
	ErrPossuiDependencias = errors.New("o registro possui vínculos e não pode ser removido")
)
