package geo

import (
	"reflect"
	"testing"
)

func TestNormalizeAddress(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"expands street", "ул. Тверская, 7, Москва", "улица Тверская, 7, Москва"},
		{"expands prospect dash", "пр-т Мира, 10", "проспект Мира, 10"},
		{"expands embankment", "наб. реки Фонтанки, 12", "набережная реки Фонтанки, 12"},
		{"drops metro tail", "Тверская, 7 м. Охотный ряд", "Тверская, 7"},
		{"drops district tail", "Ленина, 1 р-н Центральный", "Ленина, 1"},
		{"drops parenthesis", "Ленина, 1 (вторая линия)", "Ленина, 1"},
		{"collapses whitespace", "  Ленина,   1  ", "Ленина, 1"},
		{"trims commas", ", Ленина, 1,", "Ленина, 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeAddress(tt.in); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestQueryVariants(t *testing.T) {
	got := QueryVariants("ул. Тверская, 7, Москва")
	want := []string{
		"улица Тверская, 7, Москва",
		"улица Тверская, 7",
		"ул. Тверская, 7, Москва",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestQueryVariantsShortAddress(t *testing.T) {
	got := QueryVariants("Тверская, 7")
	want := []string{"Тверская, 7"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
