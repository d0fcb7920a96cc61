// Package memory implementa los puertos de persistencia y de transacción en memoria del proceso.
// Se usa en pruebas de casos de uso y para levantar la API sin base de datos (APP_ENV=local).
//
// Cada transacción de escritura trabaja sobre una copia del estado y la publica al confirmar,
// así un error (o un fallo inyectado con BeforeCommit) deja el estado anterior intacto.
// Las transacciones de escritura se ejecutan de a una; las lecturas toman la foto vigente.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/Inventario-lotes/internal/application/ports"
	"github.com/jhoicas/Inventario-lotes/internal/domain"
	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/Inventario-lotes/internal/domain/repository"
)

var _ ports.TxRunner = (*Store)(nil)

var errReadOnly = errors.New("transacción de solo lectura")

type state struct {
	templates     map[string]*entity.ProductTemplate
	inTransit     map[string]*entity.LotInTransit
	onHand        map[string]*entity.LotOnHand
	sales         map[string]*entity.Sale
	discrepancies map[string][]*entity.Discrepancy // por lote, en orden de inserción
	warehouses    map[string]*entity.Warehouse
	users         map[string]*entity.User
}

func newState() *state {
	return &state{
		templates:     map[string]*entity.ProductTemplate{},
		inTransit:     map[string]*entity.LotInTransit{},
		onHand:        map[string]*entity.LotOnHand{},
		sales:         map[string]*entity.Sale{},
		discrepancies: map[string][]*entity.Discrepancy{},
		warehouses:    map[string]*entity.Warehouse{},
		users:         map[string]*entity.User{},
	}
}

// clone copia los mapas; las entidades guardadas no se modifican nunca en sitio
// (cada escritura guarda una copia nueva), por eso basta con copiar los punteros.
func (s *state) clone() *state {
	c := newState()
	for k, v := range s.templates {
		c.templates[k] = v
	}
	for k, v := range s.inTransit {
		c.inTransit[k] = v
	}
	for k, v := range s.onHand {
		c.onHand[k] = v
	}
	for k, v := range s.sales {
		c.sales[k] = v
	}
	for k, v := range s.discrepancies {
		c.discrepancies[k] = v[:len(v):len(v)]
	}
	for k, v := range s.warehouses {
		c.warehouses[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	return c
}

// Store estado en memoria y runner de transacciones.
type Store struct {
	mu  sync.RWMutex
	cur *state
	sem chan struct{}

	// LockTimeout espera máxima por el turno de escritura; 0 = esperar hasta que ctx termine.
	// Al vencer se devuelve domain.ErrBusy, como el lock_timeout de PostgreSQL.
	LockTimeout time.Duration

	// BeforeCommit, si no es nil, se llama justo antes de publicar una transacción;
	// si devuelve error la transacción se descarta (simula un fallo del commit).
	BeforeCommit func() error
}

// NewStore crea un estado vacío.
func NewStore() *Store {
	return &Store{cur: newState(), sem: make(chan struct{}, 1)}
}

func (s *Store) snapshot() *state {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

func (s *Store) acquire(ctx context.Context) error {
	if s.LockTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.LockTimeout)
		defer cancel()
	}
	select {
	case s.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return domain.ErrBusy
		}
		return ctx.Err()
	}
}

func (s *Store) release() { <-s.sem }

// commit ejecuta fn sobre una copia del estado y la publica si no hubo error.
func (s *Store) commit(ctx context.Context, fn func(st *state) error) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()

	draft := s.snapshot().clone()
	if err := fn(draft); err != nil {
		return err
	}
	if s.BeforeCommit != nil {
		if err := s.BeforeCommit(); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
	}
	s.mu.Lock()
	s.cur = draft
	s.mu.Unlock()
	return nil
}

// Run ejecuta fn con repos atados a una transacción de escritura.
func (s *Store) Run(ctx context.Context, fn func(repos repository.Repos) error) error {
	return s.commit(ctx, func(st *state) error {
		return fn(s.bind(&txn{store: s, st: st}))
	})
}

// RunReadOnly ejecuta fn sobre la foto vigente; las escrituras fallan.
func (s *Store) RunReadOnly(ctx context.Context, fn func(repos repository.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(s.bind(&txn{store: s, st: s.snapshot(), readOnly: true}))
}

// Repos repositorios fuera de transacción: cada lectura ve el último estado confirmado
// y cada escritura se confirma sola.
func (s *Store) Repos() repository.Repos {
	return s.bind(&txn{store: s})
}

// Users repositorio de usuarios fuera de transacción.
func (s *Store) Users() repository.UserRepository {
	return &UserRepo{t: &txn{store: s}}
}

func (s *Store) bind(t *txn) repository.Repos {
	return repository.Repos{
		Templates:     &TemplateRepo{t: t},
		InTransit:     &LotInTransitRepo{t: t},
		OnHand:        &LotOnHandRepo{t: t},
		Sales:         &SaleRepo{t: t},
		Discrepancies: &DiscrepancyRepo{t: t},
		Warehouses:    &WarehouseRepo{t: t},
	}
}

// txn vista de los repos: st fijo dentro de una transacción, nil en modo autocommit.
type txn struct {
	store    *Store
	st       *state
	readOnly bool
}

func (t *txn) read() *state {
	if t.st != nil {
		return t.st
	}
	return t.store.snapshot()
}

func (t *txn) write(ctx context.Context, fn func(st *state) error) error {
	if t.readOnly {
		return errReadOnly
	}
	if t.st != nil {
		return fn(t.st)
	}
	return t.store.commit(ctx, fn)
}
