package crawler

import (
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"

	"github.com/guilhermeLira011/monitor-preco-samsung-a05s/config"
)

const kabumOrigin = "https://www.kabum.com.br"

func kabumExtractor() *Extractor {
	return kabumConfig(&config.Config{KabumURL: kabumOrigin}, false).Extractor
}

func TestExtractProductCard(t *testing.T) {
	card := firstMatch(`<html><body>
		<div class="productCard">
			<a href="/produto/1234"><span class="nameCard">Samsung Galaxy A05s 128GB 6GB RAM Preto</span></a>
			<span class="priceCard">R$ 899,00</span>
		</div>
	</body></html>`, ".productCard")

	fields := kabumExtractor().Extract(card)

	assert.Equal(t, "Samsung Galaxy A05s 128GB 6GB RAM Preto", fields.Title)
	assert.Equal(t, "R$ 899,00", fields.Price)
	assert.Equal(t, kabumOrigin+"/produto/1234", fields.Link)
}

func TestExtractRejectsShortTitle(t *testing.T) {
	e := NewExtractor(kabumOrigin,
		[]Strategy{
			FirstText(CSS("h2"), minTitleLength),
			KeywordScan(titleTags, minScannedTitleLength, "galaxy", "a05s"),
		},
		nil, nil,
	)

	card := firstMatch(`<div class="c"><h2>Novo</h2><div>Celular Samsung Galaxy A05s 128GB</div></div>`, ".c")
	fields := e.Extract(card)

	assert.Equal(t, "Celular Samsung Galaxy A05s 128GB", fields.Title)
	assert.False(t, fields.HasPrice())
	assert.False(t, fields.HasLink())
}

func TestExtractEmptyCandidate(t *testing.T) {
	card := firstMatch(`<div class="c"><img src="x.png"></div>`, ".c")
	fields := kabumExtractor().Extract(card)

	assert.Equal(t, Fields{}, fields)
	assert.False(t, fields.HasTitle())
}

func TestExtractPriceScanFallback(t *testing.T) {
	card := firstMatch(`<div class="c"><p>Galaxy A05s por apenas R$&nbsp;1.099,90 à vista</p></div>`, ".c")
	fields := kabumExtractor().Extract(card)

	// the amount is kept verbatim, non-breaking space included
	assert.Equal(t, "R$\u00a01.099,90", fields.Price)
}

func TestExtractProtocolRelativeLink(t *testing.T) {
	e := NewExtractor("https://www.mercadolivre.com.br", nil, nil, []Strategy{FirstLink()})
	card := firstMatch(`<div class="c"><a href="">empty</a><a href="//produto.mercadolivre.com.br/MLB-123">item</a></div>`, ".c")

	assert.Equal(t, "https://produto.mercadolivre.com.br/MLB-123", e.Extract(card).Link)
}

type panicStrategy struct{}

func (panicStrategy) Name() string { return "panic" }

func (panicStrategy) Attempt(*goquery.Selection) (string, bool) {
	panic("malformed node")
}

func TestExtractRecoversFromPanic(t *testing.T) {
	e := NewExtractor(kabumOrigin,
		[]Strategy{FirstText(CSS("h2"), minTitleLength)},
		[]Strategy{panicStrategy{}},
		nil,
	)
	card := firstMatch(`<div class="c"><h2>Samsung Galaxy A05s 128GB 6GB</h2></div>`, ".c")

	var fields Fields
	assert.NotPanics(t, func() { fields = e.Extract(card) })
	assert.Equal(t, Fields{}, fields)
}

func TestTitleStrategies(t *testing.T) {
	card := firstMatch(`<div class="c">
		<span>   </span>
		<span>Frete grátis para todo o Brasil</span>
		<span>Smartphone  Samsung
			Galáxy A05s</span>
	</div>`, ".c")

	title, ok := KeywordScan(titleTags, minScannedTitleLength, "galaxy").Attempt(card)
	assert.True(t, ok)
	assert.Equal(t, "Smartphone Samsung Galáxy A05s", title)

	line, ok := LineScan(minScannedTitleLength).Attempt(card)
	assert.True(t, ok)
	assert.Equal(t, "Frete grátis para todo o Brasil", line)

	_, ok = FirstText(CSS("h3"), minTitleLength).Attempt(card)
	assert.False(t, ok)
}

func TestPriceStrategies(t *testing.T) {
	card := firstMatch(`<div class="c">
		<span class="price">sem preço</span>
		<span class="price">R$ 949,00</span>
		<span class="andes-money-amount__fraction">1.299</span>
	</div>`, ".c")

	_, ok := PriceIn(CSS(".price"), false).Attempt(card)
	assert.False(t, ok, "only the first node is read")

	price, ok := PriceIn(CSS(".price"), true).Attempt(card)
	assert.True(t, ok)
	assert.Equal(t, "R$ 949,00", price)

	price, ok = FractionPrice(ClassMatches(mlFractionPattern, "span")).Attempt(card)
	assert.True(t, ok)
	assert.Equal(t, "R$ 1.299", price)
}

func TestLinkStrategies(t *testing.T) {
	card := firstMatch(`<div class="c">
		<a href="/avaliacoes">reviews</a>
		<a class="poly-component__title" href="https://www.mercadolivre.com.br/galaxy-a05s/p/MLB1">title</a>
		<a href="/produto/99">product</a>
	</div>`, ".c")

	href, ok := MarkedLink("/produto/").Attempt(card)
	assert.True(t, ok)
	assert.Equal(t, "/produto/99", href)

	href, ok = ClassLink(mlTitlePattern).Attempt(card)
	assert.True(t, ok)
	assert.Equal(t, "https://www.mercadolivre.com.br/galaxy-a05s/p/MLB1", href)

	href, ok = FirstLink().Attempt(card)
	assert.True(t, ok)
	assert.Equal(t, "/avaliacoes", href)

	_, ok = MarkedLink("/pp/").Attempt(card)
	assert.False(t, ok)
}

func TestPrecedingStrategies(t *testing.T) {
	doc := mustDoc(`<html><body><section>
		<div class="card"><a href="/MLB-1"><h2>Samsung Galaxy A05s 128GB 6GB</h2></a></div>
		<div class="price"><span>R$ 899</span></div>
		<a href="/MLB-2"><div class="wrapped">R$ 949</div></a>
		<div class="linked"><a href="/MLB-3">Galaxy A05s Preto</a><span>R$ 979</span></div>
	</section></body></html>`)

	block := doc.Find(".price")
	title, ok := PrecedingText(minTitleLength, "h2", "a").Attempt(block)
	assert.True(t, ok)
	assert.Equal(t, "Samsung Galaxy A05s 128GB 6GB", title)

	href, ok := PrecedingLink().Attempt(block)
	assert.True(t, ok)
	assert.Equal(t, "/MLB-1", href)

	_, ok = AncestorLink().Attempt(block)
	assert.False(t, ok)

	href, ok = AncestorLink().Attempt(doc.Find(".wrapped"))
	assert.True(t, ok)
	assert.Equal(t, "/MLB-2", href)

	// a container with its own link never borrows from its neighbours
	linked := doc.Find(".linked")
	_, ok = PrecedingText(minTitleLength, "h2", "a").Attempt(linked)
	assert.False(t, ok)
	_, ok = PrecedingLink().Attempt(linked)
	assert.False(t, ok)
}

func TestFindPrice(t *testing.T) {
	tests := []struct {
		text     string
		expected string
		ok       bool
	}{
		{"R$ 899,00", "R$ 899,00", true},
		{"por R$1.299,90 no pix", "R$1.299,90", true},
		{"de R$ 999,00 por R$ 899,00", "R$ 999,00", true},
		{"Total: R$ 899.", "R$ 899", true},
		{"R$ ", "", false},
		{"899,00", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			price, ok := FindPrice(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, price)
		})
	}
}

func TestPriceFromFraction(t *testing.T) {
	price, ok := PriceFromFraction(" 1.299 ")
	assert.True(t, ok)
	assert.Equal(t, "R$ 1.299", price)

	_, ok = PriceFromFraction("--")
	assert.False(t, ok)
}
