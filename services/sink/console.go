package sink

import (
	"fmt"
	"time"
)

// Announce prints the line shown before a store run starts
func (s *Sink) Announce(store string) {
	s.printf("\nExecutando o scraper para %s...\nProcurando por Samsung Galaxy A05s na %s...\n", store, store)
}

// Succeeded prints the line shown when a store run completes
func (s *Sink) Succeeded(store string) {
	s.printf("Scraper para %s executado com sucesso!\n", store)
}

// TimedOut prints the line shown when a store run exceeds its budget
func (s *Sink) TimedOut(store string, budget time.Duration) {
	s.printf("O scraper para %s excedeu o tempo limite de %s.\n", store, FormatBudget(budget))
}

// Failed prints the line shown when a store run fails
func (s *Sink) Failed(store string, err error) {
	s.printf("Ocorreu um erro ao executar o scraper para %s: %v\n", store, err)
}

// Started prints the banner of a monitoring run
func (s *Sink) Started() {
	s.printf("Iniciando monitoramento de preços do Samsung Galaxy A05s em todas as lojas...\n")
}

// Finished prints the closing lines of a monitoring run
func (s *Sink) Finished() {
	s.printf("\nProcesso de monitoramento concluído!\nVerifique os arquivos CSV e JSON gerados para cada loja.\n")
}

func (s *Sink) printf(format string, args ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.Out, format, args...)
}

// FormatBudget renders a duration the way the report states time limits
func FormatBudget(d time.Duration) string {
	if d >= time.Minute && d%time.Minute == 0 {
		if m := int(d / time.Minute); m > 1 {
			return fmt.Sprintf("%d minutos", m)
		}
		return "1 minuto"
	}
	secs := int(d / time.Second)
	if secs == 1 {
		return "1 segundo"
	}
	return fmt.Sprintf("%d segundos", secs)
}
