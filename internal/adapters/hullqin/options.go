package hullqin

import "strings"

type Option func(*Scraper)

func WithBaseURL(u string) Option {
	return func(s *Scraper) { s.baseURL = strings.TrimRight(u, "/") }
}

// WithRuleConcurrency limita cuántas páginas de reglas se abren a la vez.
func WithRuleConcurrency(n int) Option {
	return func(s *Scraper) {
		if n > 0 {
			s.ruleConcurrency = n
		}
	}
}
