package adapters

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

// StrategyConstructor - привязывает стратегию семейства к соединению.
// Если тип соединения не принадлежит семейству, возвращает UnsupportedError.
type StrategyConstructor func(conn Connection) (Strategy, error)

// Factory - реестр стратегий по семействам
type Factory struct {
	registry map[Family]StrategyConstructor
	mu       sync.RWMutex
}

// NewFactory создает пустой реестр
func NewFactory() *Factory {
	return &Factory{
		registry: make(map[Family]StrategyConstructor),
	}
}

// Register регистрирует конструктор стратегии для семейства
//
// Пример (в pkg/adapters/duckdb/strategy.go):
//
//	func init() {
//	    adapters.Register(adapters.FamilyEmbedded, newStrategy)
//	}
func (f *Factory) Register(family Family, constructor StrategyConstructor) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registry[family] = constructor
}

// Unregister удаляет конструктор
func (f *Factory) Unregister(family Family) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.registry, family)
}

// IsRegistered проверяет, есть ли стратегия для семейства
func (f *Factory) IsRegistered(family Family) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.registry[family]
	return ok
}

// RegisteredFamilies возвращает зарегистрированные семейства (отсортированы)
func (f *Factory) RegisteredFamilies() []Family {
	f.mu.RLock()
	defer f.mu.RUnlock()

	families := make([]Family, 0, len(f.registry))
	for family := range f.registry {
		families = append(families, family)
	}
	sort.Slice(families, func(i, j int) bool { return families[i] < families[j] })
	return families
}

// Dispatch определяет семейство соединения и возвращает привязанную стратегию.
// Семейство определяется один раз на вызов по дескриптору соединения.
func (f *Factory) Dispatch(ctx context.Context, conn Connection) (Strategy, error) {
	if conn == nil {
		return nil, fmt.Errorf("%w: nil connection", ErrInvalidOptions)
	}

	desc := conn.Descriptor()
	family := Classify(desc.Driver)

	f.mu.RLock()
	constructor, ok := f.registry[family]
	f.mu.RUnlock()

	if !ok {
		return nil, &UnsupportedError{
			Family: family,
			Driver: desc.Driver,
			Op:     "dispatch",
			Reason: fmt.Sprintf("no strategy registered (available: %v)", f.RegisteredFamilies()),
		}
	}

	strategy, err := constructor(conn)
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Debug().
		Str("family", family.String()).
		Str("driver", desc.Driver).
		Msg("strategy dispatched")

	return strategy, nil
}

// ========== Global Factory ==========

var globalFactory = NewFactory()

// Register регистрирует стратегию в глобальном реестре.
// Вызывается в init() пакетов семейств.
func Register(family Family, constructor StrategyConstructor) {
	globalFactory.Register(family, constructor)
}

// Unregister удаляет стратегию из глобального реестра
func Unregister(family Family) {
	globalFactory.Unregister(family)
}

// IsRegistered проверяет регистрацию в глобальном реестре
func IsRegistered(family Family) bool {
	return globalFactory.IsRegistered(family)
}

// RegisteredFamilies возвращает семейства из глобального реестра
func RegisteredFamilies() []Family {
	return globalFactory.RegisteredFamilies()
}

// Dispatch выбирает стратегию через глобальный реестр
func Dispatch(ctx context.Context, conn Connection) (Strategy, error) {
	return globalFactory.Dispatch(ctx, conn)
}
