package categorization

import "github.com/FACorreiaa/statement-analyzer/internal/domain/transaction"

// CategoryKeywords binds a category to the lowercase substrings that select it.
type CategoryKeywords struct {
	Category transaction.Category
	Keywords []string
}

// Taxonomy is the static keyword configuration of the classifier. Categories are
// scanned in slice order and the first hit wins.
type Taxonomy struct {
	Categories []CategoryKeywords
	// GamblingSites are explicit betting operators and gambling terms.
	GamblingSites []string
	// Processors are payment processors and financial institutions that must not be
	// read as gambling.
	Processors []string
	// Card-bill credit refinement keywords.
	RefundKeywords  []string
	PaymentKeywords []string
}

var gamblingSites = []string{
	"bet365", "betano", "sportingbet", "1xbet", "rivalo", "betfair", "betway", "bodog",
	"betnacional", "pixbet", "parimatch", "bet7k", "esportes da sorte", "casa de apostas",
	"aposta ganha", "blaze", "stake", "bc.game", "betmotion", "bet7", "onabet", "mr.bet",
	"brazino777", "betboo", "netbet", "sportsbet.io", "dafabet", "pinnacle", "betsson",
	"bet77", "bet8", "bet9", "betnow", "betplay", "betpix365", "betwinner", "22bet",
	"leon bet", "megapari", "melbet", "royal panda", "spin palace", "jackpot city",
	"betclic", "bwin", "pokerstars", "partypoker", "ggpoker", "888poker",
	"casino", "cassino", "slots", "bingo", "loteria", "rifa", "sorte",
	"gambling", "poker", "blackjack", "roleta", "bacará",
}

var processors = []string{
	"mercado pago", "pag seguro", "stone", "cielo", "rede", "getnet", "bin",
	"paypal", "nubank", "c6 bank", "inter", "banco do brasil", "bradesco",
	"itau", "santander", "caixa", "sicredi", "sicoob", "original", "neon",
	"nu financeira s.a.", "nu pagamentos s.a.", "will financeira s.a.",
	"caixa economica federal", "banco inter", "banco bradesco", "itaú unibanco",
	"picpay", "pagseguro internet ip s.a.", "banco mercantil do brasil s.a.",
	"efi s.a.", "ston ip s.a.", "silium infraestrutura tecnolog",
	"nuoro pay instituicao de pagam", "stark bank s.a. ip", "cartos scd s.a.",
	"moeda smart", "moeda plus", "moeda one", "real trade", "real house",
	"delta casch", "delta money", "aveiropay", "safrapay", "redecard",
	"credito", "seguros", "previdencia", "educacional", "universidade",
	"psicanalise", "terapia", "contabilidade", "gestao", "investimento", "faculdade",
}

// DefaultTaxonomy returns the built-in Brazilian consumer taxonomy.
func DefaultTaxonomy() Taxonomy {
	gambling := append([]string{}, gamblingSites...)
	gambling = append(gambling, "aposta", "jogo", "cassino", "loteria", "bingo", "poker", "blaze", "stake", "gaming", "sorte online")

	return Taxonomy{
		Categories: []CategoryKeywords{
			{transaction.CategoryFood, []string{
				"restaurante", "lanchonete", "padaria", "mercado", "supermercado", "ifood", "uber eats", "rappi",
				"food", "alimentacao", "cafe", "bar", "pizzaria", "hamburgueria", "delivery", "comida",
				"chopp sete", "varejao e padaria uni", "burger sf", "doceria mosaico", "nutrebem",
				"spoleto sete lagoas", "grillus restaurante e", "casa de bolos",
			}},
			{transaction.CategoryTransport, []string{
				"uber", "99", "taxi", "combustivel", "posto", "transporte", "metro", "onibus", "estacionamento",
				"pedágio", "veiculo", "carro", "gasolina", "etanol", "diesel", "posto volkssete",
				"posto interlagos", "840 bh saida br 040 nova lima", "expresso tropical",
			}},
			{transaction.CategoryHealth, []string{
				"farmacia", "drogaria", "hospital", "clinica", "medico", "laboratorio", "exame", "consulta",
				"odontologia", "fisioterapia", "saude", "medicina", "unimed", "amil", "bradesco saude",
				"drogaria araujo",
			}},
			{transaction.CategoryApparel, []string{
				"loja", "moda", "roupa", "calcado", "sapato", "magazine", "shopping", "vestuario", "boutique",
				"acessorios", "oticas", "joias", "relojoaria", "shein", "clube melissa", "pgz rosamake",
				"silvania kids",
			}},
			{transaction.CategoryLeisure, []string{
				"cinema", "streaming", "netflix", "spotify", "parque", "diversao", "show", "teatro", "concerto",
				"evento", "balada", "hospedagem", "clube", "ingresso", "games", "jogos", "lazer",
				"entretenimento", "turismo", "hotéis", "pousadas", "resorts", "parque tematico", "boate",
				"exposicao", "museu", "disney plus", "grupo cine 7 lagoas", "meep pa clube nautico", "baladapp",
			}},
			{transaction.CategoryTechnology, []string{
				"apple", "google", "microsoft", "eletrônicos", "celular", "software", "internet", "hardware",
				"tecnologia", "recarga celular", "eletronico", "info", "telefonia", "informatica",
				"servicos online", "aplicativos", "eletrodomesticos", "assistencia tecnica", "tim 5 a",
			}},
			{transaction.CategoryEssentialServices, []string{
				"banco", "cartorio", "correios", "telefonia", "internet", "serviços", "consultoria", "advocacia",
				"contabilidade", "reparos", "manutenção", "conta", "boleto", "pagamento", "agua", "luz",
				"energia", "gas", "condominio", "aluguel", "assinatura", "iptu", "taxas", "saneamento",
				"tv por assinatura", "mensalidade", "seguros", "protecao veicular", "consorcio",
				"credito consignado", "pgto fat cartao c6", "pagarme pagamentos sa", "nu pagamentos sa",
				"receita federal", "cooperlider associacao de protecao dev", "sociedade educacional leonardo",
				"nucleo de psicanalise e evolucao existen", "carpecas", "randon", "banco pan sa",
				"travesia securitizadora", "shpp brasil instituicao de pag", "easy food pagamentos",
				"nuvi servicos administrativos",
			}},
			{transaction.CategoryHomeAndHousing, []string{
				"casa", "construcao", "eletrica", "hidraulica", "reforma", "moveis", "decoracao",
				"eletrodomesticos", "utilidades", "imobiliaria", "material de construção", "ferramentas",
				"limpeza", "jardinagem", "lar", "mudanca", "helena casa & construcao", "com mat eletri norte",
				"supermercados bh", "agro mar rações",
			}},
			{transaction.CategoryEducation, []string{
				"escola", "universidade", "curso", "livro", "educacao", "ensino", "faculdade", "pos-graduacao",
				"mestrado", "doutorado", "certificacao", "treinamento", "workshop", "palestra", "seminario",
				"congresso", "colegio elite master", "rrpm cursos preparatorios ltda", "uniasselvi",
			}},
			{transaction.CategoryInvestments, []string{
				"investimento", "poupanca", "aplicacao", "renda fixa", "renda variavel", "acao", "fundo",
				"tesouro", "cdb", "lci", "lca", "debenture", "cri", "cra", "fidc", "fii", "etf", "previdencia",
				"tesouro nacional",
			}},
			{transaction.CategoryFeesAndInterest, []string{
				"taxa", "tarifa", "juro", "multa", "encargo", "iof", "anuidade", "manutencao conta", "saque",
				"ted", "doc", "pix",
			}},
			{transaction.CategoryGambling, gambling},
			{transaction.CategoryPets, []string{
				"pet shop", "veterinario", "racao", "pata sem dono", "associacao protetora dos animais",
				"patinhas do cipo", "instituto de protecao de animais jose paulo alves-pro-anima",
			}},
			{transaction.CategoryPrimaryIncome, []string{
				"salario", "pagamento de salario", "remuneração", "pro-labore", "renda",
			}},
			{transaction.CategoryOther, []string{
				"outros gastos", "diversos", "variados", "sem categoria", "receita federal", "transferencia", "pix",
			}},
		},
		GamblingSites:   append([]string{}, gamblingSites...),
		Processors:      append([]string{}, processors...),
		RefundKeywords:  []string{"estorno"},
		PaymentKeywords: []string{"pagamento", "inclusao de pagamento", "pgto fat"},
	}
}
