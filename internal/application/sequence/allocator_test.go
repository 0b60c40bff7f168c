package sequence_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pharmadist-core/internal/application/sequence"
	"github.com/jhoicas/pharmadist-core/internal/domain/entity"
	"github.com/jhoicas/pharmadist-core/internal/domain/repository"
	"github.com/jhoicas/pharmadist-core/internal/infrastructure/memory"
	"github.com/jhoicas/pharmadist-core/pkg/logger"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextSequence_CienConcurrentesSinHuecosNiDuplicados(t *testing.T) {
	store := memory.New()
	alloc := sequence.NewAllocator(store, nil, logger.Nop())
	ctx := context.Background()

	const n = 100
	results := make([]int64, n)
	docNos := make([]string, n)
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, err := alloc.NextSequence(ctx, 1, entity.RegisterSalesReturn, date(2025, time.May, 2))
			if err != nil {
				errs <- err
				return
			}
			results[i] = a.SeqNo
			docNos[i] = a.DocNo
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	sort.Slice(results, func(i, j int) bool { return results[i] < results[j] })
	for i, v := range results {
		assert.Equal(t, int64(i+1), v)
	}
	seen := map[string]bool{}
	for _, d := range docNos {
		assert.False(t, seen[d], "número duplicado %s", d)
		seen[d] = true
	}
	assert.True(t, seen["25-26/CN0100"])
}

func TestNextSequence_FacturaReiniciaPorEjercicio(t *testing.T) {
	store := memory.New()
	alloc := sequence.NewAllocator(store, nil, logger.Nop())
	ctx := context.Background()

	a1, err := alloc.NextSequence(ctx, 1, entity.RegisterSalesInvoice, date(2026, time.March, 31))
	require.NoError(t, err)
	a2, err := alloc.NextSequence(ctx, 1, entity.RegisterSalesInvoice, date(2026, time.March, 31))
	require.NoError(t, err)
	a3, err := alloc.NextSequence(ctx, 1, entity.RegisterSalesInvoice, date(2026, time.April, 1))
	require.NoError(t, err)

	assert.Equal(t, "25-26/A00001", a1.DocNo)
	assert.Equal(t, "25-26/A00002", a2.DocNo)
	assert.Equal(t, "26-27/A00001", a3.DocNo, "el 1 de abril abre un contador nuevo")
}

func TestNextSequence_DevolucionContadorCorrido(t *testing.T) {
	store := memory.New()
	alloc := sequence.NewAllocator(store, nil, logger.Nop())
	ctx := context.Background()

	a1, err := alloc.NextSequence(ctx, 1, entity.RegisterSalesReturn, date(2026, time.March, 31))
	require.NoError(t, err)
	a2, err := alloc.NextSequence(ctx, 1, entity.RegisterSalesReturn, date(2026, time.April, 1))
	require.NoError(t, err)

	assert.Equal(t, "25-26/CN0001", a1.DocNo)
	assert.Equal(t, "26-27/CN0002", a2.DocNo, "sin reinicio; el prefijo sigue la fecha")
}

func TestNextSequence_AlcancePorEmpresa(t *testing.T) {
	store := memory.New()
	alloc := sequence.NewAllocator(store, nil, logger.Nop())
	ctx := context.Background()

	a, err := alloc.NextSequence(ctx, 1, entity.RegisterSalesOrder, date(2025, time.June, 1))
	require.NoError(t, err)
	b, err := alloc.NextSequence(ctx, 2, entity.RegisterSalesOrder, date(2025, time.June, 1))
	require.NoError(t, err)
	assert.Equal(t, int64(1), a.SeqNo)
	assert.Equal(t, int64(1), b.SeqNo)
}

func TestNextSequence_RespetaDocumentosExistentes(t *testing.T) {
	store := memory.New()
	store.PutDocument(entity.Document{
		CompanyID: 1, Register: entity.RegisterSalesInvoice, SeqNo: 41, DocNo: "25-26/A00041",
		DocDate: date(2025, time.July, 1), Enabled: true,
	})
	// Documento de otro ejercicio: no cuenta para el alcance anual.
	store.PutDocument(entity.Document{
		CompanyID: 1, Register: entity.RegisterSalesInvoice, SeqNo: 900, DocNo: "24-25/A00900",
		DocDate: date(2025, time.March, 1), Enabled: true,
	})
	alloc := sequence.NewAllocator(store, nil, logger.Nop())

	a, err := alloc.NextSequence(context.Background(), 1, entity.RegisterSalesInvoice, date(2025, time.August, 1))
	require.NoError(t, err)
	assert.Equal(t, int64(42), a.SeqNo)
}

func TestNextInTx_RollbackDevuelveElConsecutivo(t *testing.T) {
	store := memory.New()
	alloc := sequence.NewAllocator(store, nil, logger.Nop())
	ctx := context.Background()
	boom := errors.New("falla posterior a la numeración")

	err := store.RunInTx(ctx, func(_ repository.DocumentRepository, seqRepo repository.SequenceRepository) error {
		a, err := alloc.NextInTx(ctx, seqRepo, 1, entity.RegisterPurchaseOrder, date(2025, time.May, 1))
		require.NoError(t, err)
		assert.Equal(t, int64(1), a.SeqNo)
		return boom
	})
	require.ErrorIs(t, err, boom)

	a, err := alloc.NextSequence(ctx, 1, entity.RegisterPurchaseOrder, date(2025, time.May, 1))
	require.NoError(t, err)
	assert.Equal(t, int64(1), a.SeqNo, "la asignación revertida no deja hueco")
	assert.Equal(t, "25-26/PO00001", a.DocNo)
}

type recordingLocker struct {
	mu   sync.Mutex
	keys []string
	held int
}

func (l *recordingLocker) Lock(_ context.Context, key string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.keys = append(l.keys, key)
	l.held++
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.held--
	}, nil
}

func TestNextSequence_TomaYLiberaElCandadoDelAlcance(t *testing.T) {
	store := memory.New()
	locker := &recordingLocker{}
	alloc := sequence.NewAllocator(store, locker, logger.Nop())

	_, err := alloc.NextSequence(context.Background(), 7, entity.RegisterSalesInvoice, date(2025, time.May, 1))
	require.NoError(t, err)
	assert.Equal(t, []string{"seq:7:SALES_INVOICE:2025"}, locker.keys)
	assert.Zero(t, locker.held)
}
