package cart

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() *Store {
	return NewStore(time.Hour)
}

func snap(id string, price int) Snapshot {
	return Snapshot{
		ProductID: id,
		Name:      "product " + id,
		Price:     price,
		Image:     "https://img.example/" + id,
		Category:  "Masculino",
	}
}

func TestAddMergesSameVariant(t *testing.T) {
	s := newTestStore()
	const key = "session-1"

	s.Add(key, snap("a", 100), "M", "Preto")
	c := s.Add(key, snap("a", 100), "M", "Preto")

	require.Len(t, c.Lines, 1)
	assert.Equal(t, 2, c.Lines[0].Quantity)
	assert.Equal(t, 2, c.TotalItems())
	assert.Equal(t, 200, c.TotalPrice())
	assert.True(t, c.Open, "adding must open the drawer flag")
}

func TestAddDistinctVariantsMakeDistinctLines(t *testing.T) {
	s := newTestStore()
	const key = "session-1"

	s.Add(key, snap("a", 100), "M", "Preto")
	s.Add(key, snap("a", 100), "G", "Preto")
	c := s.Add(key, snap("a", 100), "M", "Branco")

	assert.Len(t, c.Lines, 3)
	assert.Equal(t, 3, c.TotalItems())
	for _, l := range c.Lines {
		assert.Equal(t, 1, l.Quantity)
	}
}

func TestSetQuantityIsAbsolute(t *testing.T) {
	s := newTestStore()
	const key = "session-1"

	s.Add(key, snap("a", 100), "M", "Preto")
	c := s.SetQuantity(key, "a", "M", "Preto", 5)

	require.Len(t, c.Lines, 1)
	assert.Equal(t, 5, c.Lines[0].Quantity)
	assert.Equal(t, 500, c.TotalPrice())
}

func TestSetQuantityZeroOrNegativeRemoves(t *testing.T) {
	for _, quantity := range []int{0, -1} {
		s := newTestStore()
		const key = "session-1"

		s.Add(key, snap("a", 100), "M", "Preto")
		c := s.SetQuantity(key, "a", "M", "Preto", quantity)

		assert.Emptyf(t, c.Lines, "quantity %d must remove the line", quantity)
		assert.Equal(t, 0, c.TotalItems())
		assert.Equal(t, 0, c.TotalPrice())
	}
}

func TestSetQuantityUnknownLineIsNoop(t *testing.T) {
	s := newTestStore()
	const key = "session-1"

	s.Add(key, snap("a", 100), "M", "Preto")
	c := s.SetQuantity(key, "a", "G", "Azul", 7)

	require.Len(t, c.Lines, 1)
	assert.Equal(t, 1, c.Lines[0].Quantity)
}

func TestRemoveLineIsVariantScoped(t *testing.T) {
	s := newTestStore()
	const key = "session-1"

	s.Add(key, snap("a", 100), "M", "Preto")
	s.Add(key, snap("a", 100), "G", "Preto")
	c := s.RemoveLine(key, "a", "M", "Preto")

	require.Len(t, c.Lines, 1)
	assert.Equal(t, "G", c.Lines[0].Size)
}

func TestRemoveProductDropsEveryVariant(t *testing.T) {
	s := newTestStore()
	const key = "session-1"

	s.Add(key, snap("a", 100), "M", "Preto")
	s.Add(key, snap("a", 100), "G", "Branco")
	s.Add(key, snap("b", 50), "Único", "Azul")
	c := s.RemoveProduct(key, "a")

	require.Len(t, c.Lines, 1)
	assert.Equal(t, "b", c.Lines[0].ProductID)
	assert.Equal(t, 50, c.TotalPrice())
}

func TestPriceIsFrozenAtAddTime(t *testing.T) {
	s := newTestStore()
	const key = "session-1"

	s.Add(key, snap("a", 100), "M", "Preto")

	// Same product comes back from the catalog cheaper; the existing
	// line keeps the price it was added at.
	c := s.Add(key, snap("a", 80), "M", "Preto")

	require.Len(t, c.Lines, 1)
	assert.Equal(t, 100, c.Lines[0].Price)
	assert.Equal(t, 200, c.TotalPrice())
}

func TestClear(t *testing.T) {
	s := newTestStore()
	const key = "session-1"

	s.Add(key, snap("a", 100), "M", "Preto")
	s.Add(key, snap("b", 50), "Único", "Azul")
	c := s.Clear(key)

	assert.Empty(t, c.Lines)
	assert.Equal(t, 0, c.TotalItems())
	assert.Equal(t, 0, c.TotalPrice())
}

func TestCartsAreIsolatedPerSession(t *testing.T) {
	s := newTestStore()

	s.Add("session-1", snap("a", 100), "M", "Preto")
	c := s.Get("session-2")

	assert.Empty(t, c.Lines)
}

func TestReturnedCartsAreDetachedCopies(t *testing.T) {
	s := newTestStore()
	const key = "session-1"

	c1 := s.Add(key, snap("a", 100), "M", "Preto")
	c1.Lines[0].Quantity = 99

	c2 := s.Get(key)
	assert.Equal(t, 1, c2.Lines[0].Quantity, "mutating a returned cart must not touch the store")
}

func TestWorkedScenario(t *testing.T) {
	s := newTestStore()
	const key = "session-1"

	s.Add(key, snap("a", 100), "M", "Preto")
	c := s.Add(key, snap("a", 100), "M", "Preto")
	require.Len(t, c.Lines, 1)
	assert.Equal(t, 2, c.Lines[0].Quantity)
	assert.Equal(t, 200, c.TotalPrice())

	c = s.Add(key, snap("b", 50), "Único", "Azul")
	assert.Equal(t, 3, c.TotalItems())
	assert.Equal(t, 250, c.TotalPrice())

	c = s.SetQuantity(key, "a", "M", "Preto", 5)
	assert.Equal(t, 550, c.TotalPrice())

	c = s.RemoveProduct(key, "a")
	assert.Equal(t, 1, c.TotalItems())
	assert.Equal(t, 50, c.TotalPrice())

	want := []Line{{
		Snapshot: snap("b", 50),
		Size:     "Único",
		Color:    "Azul",
		Quantity: 1,
	}}
	if diff := cmp.Diff(want, c.Lines); diff != "" {
		t.Fatalf("unexpected cart lines (-want +got):\n%s", diff)
	}
}
