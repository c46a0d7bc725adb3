package fields

// Aliases groups the alias sets of every logical field an imported row can
// carry. The zero value is useless; use DefaultAliases. Alias data is static
// configuration assembled once at init and passed explicitly to callers, never
// mutated afterwards.
type Aliases struct {
	Client        AliasSet
	Document      AliasSet
	Contract      AliasSet
	Product       AliasSet
	Partner       AliasSet
	Bank          AliasSet
	Status        AliasSet
	GrossVolume   AliasSet
	NetVolume     AliasSet
	Commission    AliasSet
	ReferenceDate AliasSet
}

// DefaultAliases covers the column vocabulary observed across partner feeds:
// spreadsheet exports, CSV channels and manual entry all name the same logical
// fields differently.
var DefaultAliases = Aliases{
	Client: NewAliasSet(
		"cliente", "nome", "nomecliente", "nome_cliente", "nome do cliente",
		"seller", "beneficiario",
	),
	Document: NewAliasSet(
		"cpf", "cnpj", "documento", "cpf_cliente", "cpfcliente", "cliente_cpf",
		"documento_cliente",
	),
	Contract: NewAliasSet(
		"contrato", "contrato_id", "idcontrato", "numero_contrato", "contratoid",
		"contrato_ade", "numero_ade", "ade",
	),
	Product: NewAliasSet(
		"produto", "produto_financeiro", "modalidade", "produto credito", "linha",
		"produto_nome",
	),
	Partner: NewAliasSet(
		"promotora", "promoter", "parceiro", "origem", "empresa", "canal", "parceria",
	),
	Bank: NewAliasSet(
		"banco", "instituicao", "instituicao_financeira", "banco_destino", "financeira",
	),
	Status: NewAliasSet(
		"status", "situacao", "etapa", "fase", "statuscontrato",
	),
	GrossVolume: NewAliasSet(
		"valor_bruto", "valorbruto", "valor bruto", "vl_bruto", "valor total",
		"valor_total", "valor liberado",
	),
	NetVolume: NewAliasSet(
		"valor_liquido", "valorliquido", "valor liquido", "vl_liquido",
		"valor liquidado", "valor creditado", "valorcliente", "valor_cliente",
		"valor_pagamento", "valorcontrato", "valorcredito", "volume", "liquido",
		"valor",
	),
	Commission: NewAliasSet(
		"comissao", "comissao total", "comissao_total", "vl_comissao",
		"valorcomissao", "valor_comissao", "valor comissao", "comissaoliquida",
		"comissao liquida", "comissao estimada", "taxa comissao",
		"percentual comissao", "comissaoreal",
	),
	ReferenceDate: NewAliasSet(
		"data", "data_contratacao", "data pagamento", "data_pagamento",
		"datareferencia", "data_da_operacao", "dt_ref", "dtpagamento",
		"data_operacao",
	),
}
