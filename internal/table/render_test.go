package table

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	t.Run("rows and pager", func(t *testing.T) {
		tbl := New(manyRates(23), rateColumns())
		tbl.ToggleSort("name")

		out := Render(tbl.View(), RenderOptions{Selected: -1})
		require.Contains(t, out, "NAME ▲")
		require.Contains(t, out, "Provider 01")
		require.NotContains(t, out, "Provider 11")
		require.Contains(t, out, "Showing 1 to 10 of 23 results")
		require.Contains(t, out, "Page 1 of 3")
	})

	t.Run("empty", func(t *testing.T) {
		tbl := New[rate](nil, rateColumns())
		out := Render(tbl.View(), RenderOptions{Selected: -1})
		require.Contains(t, out, "No data available")
		require.NotContains(t, out, "Showing")
	})

	t.Run("loading", func(t *testing.T) {
		tbl := New(manyRates(2), rateColumns())
		tbl.SetLoading(true)
		out := Render(tbl.View(), RenderOptions{Selected: -1})
		require.Contains(t, out, "Loading...")
		require.NotContains(t, out, "Provider 01")
	})

	t.Run("actions column", func(t *testing.T) {
		tbl := New(manyRates(1), rateColumns(), WithActions(Action[rate]{Label: "Edit", Key: "e"}))
		out := Render(tbl.View(), RenderOptions{Selected: 0})
		require.Contains(t, out, "ACTIONS")
		require.Contains(t, out, "[e] Edit")
	})

	t.Run("narrow width truncates", func(t *testing.T) {
		rows := []rate{{Name: strings.Repeat("x", 60), Status: "active"}}
		tbl := New(rows, rateColumns())
		out := Render(tbl.View(), RenderOptions{Width: 50, Selected: -1})
		require.Contains(t, out, "…")
		require.NotContains(t, out, strings.Repeat("x", 41))
	})
}
