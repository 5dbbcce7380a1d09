// Package memstore implementaciones en memoria de los repositorios de dominio para tests de
// casos de uso. RunInTx serializa las transacciones y restaura el estado si fn falla, de modo
// que los tests pueden verificar atomicidad sin PostgreSQL.
package memstore

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/jhoicas/redevance-api/internal/domain/entity"
	"github.com/jhoicas/redevance-api/internal/domain/repository"
)

type state struct {
	users          map[string]entity.User
	assujettis     map[string]entity.Assujetti
	declarations   map[string]entity.Declaration
	lines          map[string][]entity.DeclarationLine
	notes          map[string]entity.TaxationNote
	onboarding     map[string]entity.OnboardingProgress // por user_id
	controls       map[string]entity.ControlRecord
	rectifications map[string]entity.RectificationNote // por control_id
	geography      map[string]entity.GeographyNode
	rules          map[string]entity.TaxRule // por categoría|clasificación
	settings       map[string]string
}

func newState() state {
	return state{
		users:          map[string]entity.User{},
		assujettis:     map[string]entity.Assujetti{},
		declarations:   map[string]entity.Declaration{},
		lines:          map[string][]entity.DeclarationLine{},
		notes:          map[string]entity.TaxationNote{},
		onboarding:     map[string]entity.OnboardingProgress{},
		controls:       map[string]entity.ControlRecord{},
		rectifications: map[string]entity.RectificationNote{},
		geography:      map[string]entity.GeographyNode{},
		rules:          map[string]entity.TaxRule{},
		settings:       map[string]string{},
	}
}

func (s state) clone() state {
	c := newState()
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.assujettis {
		c.assujettis[k] = cloneAssujetti(v)
	}
	for k, v := range s.declarations {
		c.declarations[k] = v
	}
	for k, v := range s.lines {
		c.lines[k] = append([]entity.DeclarationLine(nil), v...)
	}
	for k, v := range s.notes {
		c.notes[k] = v
	}
	for k, v := range s.onboarding {
		c.onboarding[k] = cloneProgress(v)
	}
	for k, v := range s.controls {
		c.controls[k] = v
	}
	for k, v := range s.rectifications {
		c.rectifications[k] = v
	}
	for k, v := range s.geography {
		c.geography[k] = v
	}
	for k, v := range s.rules {
		c.rules[k] = v
	}
	for k, v := range s.settings {
		c.settings[k] = v
	}
	return c
}

// Store base de datos en memoria.
type Store struct {
	mu    sync.Mutex
	txMu  sync.Mutex
	data  state
	fails map[string]error
	calls map[string]int
}

// New crea un almacén vacío.
func New() *Store {
	return &Store{data: newState(), fails: map[string]error{}, calls: map[string]int{}}
}

// FailOn hace que la operación op (p.ej. "notes.create") devuelva err en sus próximas n llamadas.
// n <= 0 falla siempre.
func (s *Store) FailOn(op string, err error, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fails[op] = err
	s.calls[op] = n
}

// check se invoca con s.mu tomado.
func (s *Store) check(op string) error {
	err, ok := s.fails[op]
	if !ok {
		return nil
	}
	if n := s.calls[op]; n > 0 {
		if n == 1 {
			delete(s.fails, op)
		}
		s.calls[op] = n - 1
	}
	return err
}

// Repos devuelve los repositorios atados al almacén (fuera de transacción).
func (s *Store) Repos() repository.TxRepos {
	return repository.TxRepos{
		Users:        Users{s},
		Assujettis:   Assujettis{s},
		Declarations: Declarations{s},
		Notes:        Notes{s},
		Onboarding:   Onboarding{s},
		Controls:     Controls{s},
	}
}

// RunInTx implementa repository.TxRunner: serializa, y si fn falla restaura la instantánea previa.
func (s *Store) RunInTx(ctx context.Context, fn func(repos repository.TxRepos) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.data.clone()
	err := s.check("tx.begin")
	s.mu.Unlock()
	if err != nil {
		return err
	}

	if err := fn(s.Repos()); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// Geography repositorio del árbol geográfico.
func (s *Store) Geography() Geography { return Geography{s} }

// TaxRules repositorio de tarifas.
func (s *Store) TaxRules() TaxRules { return TaxRules{s} }

// Settings repositorio de parámetros.
func (s *Store) Settings() Settings { return Settings{s} }

// Counts tamaños de las tablas transaccionales (aserciones de atomicidad).
type Counts struct {
	Users, Assujettis, Declarations, Lines, Notes, Onboarding, Controls, Rectifications int
}

// Counts devuelve los tamaños actuales.
func (s *Store) Counts() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := 0
	for _, l := range s.data.lines {
		lines += len(l)
	}
	return Counts{
		Users:          len(s.data.users),
		Assujettis:     len(s.data.assujettis),
		Declarations:   len(s.data.declarations),
		Lines:          lines,
		Notes:          len(s.data.notes),
		Onboarding:     len(s.data.onboarding),
		Controls:       len(s.data.controls),
		Rectifications: len(s.data.rectifications),
	}
}

func cloneAssujetti(a entity.Assujetti) entity.Assujetti {
	a.Activities = append([]string(nil), a.Activities...)
	return a
}

func cloneProgress(p entity.OnboardingProgress) entity.OnboardingProgress {
	answers := make(map[int]json.RawMessage, len(p.Answers))
	for k, v := range p.Answers {
		answers[k] = append(json.RawMessage(nil), v...)
	}
	p.Answers = answers
	return p
}
