package matrix

import (
	"errors"
	"math"
	"testing"

	"lavanda/domain/core"
)

func TestFromRows_RejectsRaggedInput(t *testing.T) {
	_, err := FromRows([][]float64{{1, 2}, {3}})
	if err == nil {
		t.Fatal("expected error for ragged rows")
	}
}

func TestTranspose(t *testing.T) {
	m, err := FromRows([][]float64{{1, 2, 3}, {4, 5, 6}})
	if err != nil {
		t.Fatal(err)
	}
	tr := m.Transpose()
	if tr.Rows != 3 || tr.Cols != 2 {
		t.Fatalf("transpose shape %dx%d, want 3x2", tr.Rows, tr.Cols)
	}
	if tr.At(2, 1) != 6 || tr.At(0, 1) != 4 {
		t.Error("transpose elements misplaced")
	}
}

func TestMul(t *testing.T) {
	a, _ := FromRows([][]float64{{1, 2}, {3, 4}})
	b, _ := FromRows([][]float64{{5, 6}, {7, 8}})
	got, err := Mul(a, b)
	if err != nil {
		t.Fatal(err)
	}
	want := [][]float64{{19, 22}, {43, 50}}
	for i := range want {
		for j := range want[i] {
			if got.At(i, j) != want[i][j] {
				t.Errorf("product[%d][%d] = %f, want %f", i, j, got.At(i, j), want[i][j])
			}
		}
	}

	if _, err := Mul(a, New(3, 2)); err == nil {
		t.Error("expected dimension mismatch error")
	}
}

func TestMulVec(t *testing.T) {
	a, _ := FromRows([][]float64{{1, 2, 3}, {4, 5, 6}})
	got, err := MulVec(a, []float64{1, 0, -1})
	if err != nil {
		t.Fatal(err)
	}
	if got[0] != -2 || got[1] != -2 {
		t.Errorf("A·v = %v, want [-2 -2]", got)
	}

	if _, err := MulVec(a, []float64{1}); err == nil {
		t.Error("expected dimension mismatch error")
	}
}

func TestInvert_RoundTrip(t *testing.T) {
	a, _ := FromRows([][]float64{
		{4, 7, 2},
		{2, 6, 1},
		{1, 1, 3},
	})
	inv, err := Invert(a)
	if err != nil {
		t.Fatal(err)
	}
	prod, err := Mul(a, inv)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1
			}
			if math.Abs(prod.At(i, j)-want) > 1e-9 {
				t.Errorf("A·A⁻¹[%d][%d] = %e, want %f", i, j, prod.At(i, j), want)
			}
		}
	}
}

func TestInvert_RequiresPivoting(t *testing.T) {
	// Zero in the (0,0) position forces a row swap before elimination.
	a, _ := FromRows([][]float64{
		{0, 1},
		{1, 0},
	})
	inv, err := Invert(a)
	if err != nil {
		t.Fatalf("invertible matrix rejected: %v", err)
	}
	if inv.At(0, 1) != 1 || inv.At(1, 0) != 1 {
		t.Error("permutation inverse incorrect")
	}
}

func TestInvert_SingularMatrix(t *testing.T) {
	// Second row is a multiple of the first.
	a, _ := FromRows([][]float64{
		{1, 2},
		{2, 4},
	})
	_, err := Invert(a)
	if err == nil {
		t.Fatal("expected singular matrix error")
	}
	if !errors.Is(err, core.ErrSingularMatrix) {
		t.Errorf("error %v should wrap ErrSingularMatrix", err)
	}
}

func TestInvert_NonSquare(t *testing.T) {
	if _, err := Invert(New(2, 3)); err == nil {
		t.Fatal("expected error for non-square matrix")
	}
}
