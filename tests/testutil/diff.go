// Package testutil agrupa ayudas de test compartidas.
package testutil

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// ExpectNoDiff compara want y got y, si difieren, marca el test como fallido
// con el diff (-want +got).
func ExpectNoDiff(tb testing.TB, want, got any, opts ...cmp.Option) bool {
	tb.Helper()
	if diff := cmp.Diff(want, got, opts...); diff != "" {
		tb.Errorf("unexpected diff, -want +got:\n%s", diff)
		return false
	}
	return true
}

// EquateEmpty trata igual nil y los slices o mapas vacíos.
func EquateEmpty() cmp.Option { return cmpopts.EquateEmpty() }
