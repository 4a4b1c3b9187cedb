package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guilhermeLira011/monitor-preco-samsung-a05s/internal/crawler"
	"github.com/guilhermeLira011/monitor-preco-samsung-a05s/services/publisher"
	"github.com/guilhermeLira011/monitor-preco-samsung-a05s/services/sink"
)

// MockScraper implements the crawler.Scraper interface for testing
type MockScraper struct {
	store  crawler.Store
	result crawler.Result
	delay  time.Duration
	panics bool
}

// Ensure MockScraper implements crawler.Scraper
var _ crawler.Scraper = (*MockScraper)(nil)

func (m *MockScraper) Run(ctx context.Context) crawler.Result {
	if m.panics {
		panic("selector blew up")
	}
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return crawler.Result{Store: m.store, State: crawler.Empty}
		}
	}
	return m.result
}

func (m *MockScraper) GetName() string {
	return m.store.String() + "Scraper"
}

func (m *MockScraper) GetStore() crawler.Store {
	return m.store
}

// MockPublisher implements the publisher.Publisher interface for testing
type MockPublisher struct {
	mu       sync.Mutex
	messages map[string][][]byte
	err      error
}

// Ensure MockPublisher implements publisher.Publisher
var _ publisher.Publisher = (*MockPublisher)(nil)

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{messages: make(map[string][][]byte)}
}

func (m *MockPublisher) Publish(ctx context.Context, store string, message []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}

	// Copy the message to ensure thread safety
	messageCopy := make([]byte, len(message))
	copy(messageCopy, message)

	m.messages[store] = append(m.messages[store], messageCopy)
	return nil
}

func (m *MockPublisher) Close() error {
	return nil
}

func (m *MockPublisher) Messages(store string) [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.messages[store]
}

func foundResult(store crawler.Store, tagged bool, n int) crawler.Result {
	listings := make([]crawler.Listing, n)
	for i := range listings {
		listings[i] = crawler.Listing{
			Title:      "Samsung Galaxy A05s 128GB 6GB RAM Preto",
			Price:      "R$ 899,00",
			Link:       "https://example.com/produto/" + string(rune('a'+i)),
			Store:      store,
			Tagged:     tagged,
			Tier:       crawler.StrictMatch,
			CapturedAt: time.Date(2026, 10, 15, 10, 0, 0, 0, time.Local),
		}
	}
	return crawler.Result{Store: store, Tagged: tagged, Term: "samsung galaxy a05s", Listings: listings, State: crawler.Found}
}

func TestWorkerRunSummaries(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	pub := NewMockPublisher()

	scrapers := []crawler.Scraper{
		&MockScraper{store: crawler.Kabum, result: foundResult(crawler.Kabum, true, 7)},
		&MockScraper{store: crawler.MagazineLuiza, result: crawler.Result{Store: crawler.MagazineLuiza, Tagged: true, State: crawler.Empty}},
		&MockScraper{store: crawler.MercadoLivre, result: foundResult(crawler.MercadoLivre, false, 2)},
	}

	w := NewWorker(scrapers, sink.New(dir, &out), pub, time.Minute, 1)
	summaries := w.Run(context.Background())

	require.Len(t, summaries, 3)
	assert.Equal(t, "Kabum", summaries[0].Store)
	assert.Equal(t, StatusFound, summaries[0].Status)
	assert.Equal(t, 7, summaries[0].Count)
	assert.Equal(t, StatusEmpty, summaries[1].Status)
	assert.Equal(t, StatusFound, summaries[2].Status)
	assert.Equal(t, 2, summaries[2].Count)

	assert.FileExists(t, filepath.Join(dir, "precos_kabum_galaxy_a05s.csv"))
	assert.FileExists(t, filepath.Join(dir, "precos_galaxy_a05s.json"))
	_, err := os.Stat(filepath.Join(dir, "precos_magazine_luiza_galaxy_a05s.csv"))
	assert.True(t, os.IsNotExist(err))

	// only the persisted top five are published
	kabum := pub.Messages("Kabum")
	require.Len(t, kabum, 5)
	var msg map[string]string
	require.NoError(t, json.Unmarshal(kabum[0], &msg))
	assert.Equal(t, w.RunID(), msg["run_id"])
	assert.Equal(t, "Kabum", msg["store"])
	assert.Equal(t, "R$ 899,00", msg["price"])

	assert.Empty(t, pub.Messages("Magazine Luiza"))
	assert.Len(t, pub.Messages("Mercado Livre"), 2)

	console := out.String()
	assert.Contains(t, console, "Scraper para Kabum executado com sucesso!")
	assert.Contains(t, console, "Nenhum produto correspondente encontrado na Magazine Luiza.")
}

func TestWorkerTimeoutIsNotFatal(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer

	scrapers := []crawler.Scraper{
		&MockScraper{store: crawler.MercadoLivre, delay: time.Second},
		&MockScraper{store: crawler.Kabum, result: foundResult(crawler.Kabum, true, 1)},
	}

	w := NewWorker(scrapers, sink.New(dir, &out), nil, 50*time.Millisecond, 2)
	summaries := w.Run(context.Background())

	require.Len(t, summaries, 2)
	assert.Equal(t, StatusTimeout, summaries[0].Status)
	assert.Error(t, summaries[0].Err)
	assert.Less(t, summaries[0].Elapsed, time.Second)
	assert.Equal(t, StatusFound, summaries[1].Status)

	assert.Contains(t, out.String(), "O scraper para Mercado Livre excedeu o tempo limite")
	_, err := os.Stat(filepath.Join(dir, "precos_galaxy_a05s.csv"))
	assert.True(t, os.IsNotExist(err))
}

func TestWorkerPanicIsIsolated(t *testing.T) {
	var out bytes.Buffer
	scrapers := []crawler.Scraper{
		&MockScraper{store: crawler.Kabum, panics: true},
		&MockScraper{store: crawler.MagazineLuiza, result: foundResult(crawler.MagazineLuiza, true, 1)},
	}

	w := NewWorker(scrapers, sink.New(t.TempDir(), &out), nil, time.Minute, 1)
	summaries := w.Run(context.Background())

	require.Len(t, summaries, 2)
	assert.Equal(t, StatusFailed, summaries[0].Status)
	assert.Contains(t, summaries[0].Err.Error(), "selector blew up")
	assert.Equal(t, StatusFound, summaries[1].Status)
	assert.Contains(t, out.String(), "Ocorreu um erro ao executar o scraper para Kabum")
}

func TestWorkerPublishErrorIsLogged(t *testing.T) {
	pub := NewMockPublisher()
	pub.err = errors.New("redis down")

	scrapers := []crawler.Scraper{
		&MockScraper{store: crawler.Kabum, result: foundResult(crawler.Kabum, true, 3)},
	}

	w := NewWorker(scrapers, sink.New(t.TempDir(), &bytes.Buffer{}), pub, time.Minute, 1)
	summaries := w.Run(context.Background())

	require.Len(t, summaries, 1)
	assert.Equal(t, StatusFound, summaries[0].Status)
	assert.NoError(t, summaries[0].Err)
}

func TestWorkerCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	scrapers := []crawler.Scraper{
		&MockScraper{store: crawler.Kabum, delay: time.Second},
	}

	w := NewWorker(scrapers, sink.New(t.TempDir(), &bytes.Buffer{}), nil, time.Minute, 1)
	summaries := w.Run(ctx)

	require.Len(t, summaries, 1)
	assert.Equal(t, StatusFailed, summaries[0].Status)
	assert.ErrorIs(t, summaries[0].Err, context.Canceled)
}
