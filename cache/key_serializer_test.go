package cache

import (
	"testing"

	"github.com/google/uuid"
)

func TestDefaultKeySerializer_SerializeKey(t *testing.T) {
	serializer := NewDefaultKeySerializer()
	id := uuid.MustParse("3fa85f64-5717-4562-b3fc-2c963f66afa6")

	tests := []struct {
		name string
		kind string
		args []any
		want string
	}{
		{
			name: "no args",
			kind: "menus",
			args: []any{},
			want: "menus",
		},
		{
			name: "uuid arg uses canonical form",
			kind: "menu",
			args: []any{id},
			want: "menu:3fa85f64-5717-4562-b3fc-2c963f66afa6",
		},
		{
			name: "string arg",
			kind: "dish",
			args: []any{"abc"},
			want: "dish:abc",
		},
		{
			name: "basic types",
			kind: "page",
			args: []any{1, true},
			want: "page:1:true",
		},
		{
			name: "nil arg",
			kind: "submenu",
			args: []any{nil},
			want: "submenu:nil",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := serializer.SerializeKey(tt.kind, tt.args...)
			if got != tt.want {
				t.Errorf("SerializeKey() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKeyScheme(t *testing.T) {
	id := uuid.MustParse("7b4e8c9a-6f0d-4a7e-9d55-0a1b2c3d4e5f")

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"menu item", MenuKey(id), "menu:7b4e8c9a-6f0d-4a7e-9d55-0a1b2c3d4e5f"},
		{"submenu item", SubMenuKey(id), "submenu:7b4e8c9a-6f0d-4a7e-9d55-0a1b2c3d4e5f"},
		{"dish item", DishKey(id), "dish:7b4e8c9a-6f0d-4a7e-9d55-0a1b2c3d4e5f"},
		{"generic item", ItemKey(KindDish, id), "dish:7b4e8c9a-6f0d-4a7e-9d55-0a1b2c3d4e5f"},
		{"menu list", MenuListKey(), "menus"},
		{"submenu list scoped by menu", SubMenuListKey(id), "submenus:7b4e8c9a-6f0d-4a7e-9d55-0a1b2c3d4e5f"},
		{"dish list scoped by submenu", DishListKey(id), "dishes:7b4e8c9a-6f0d-4a7e-9d55-0a1b2c3d4e5f"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("key = %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestKeyScheme_ScopedListsDoNotCollide(t *testing.T) {
	a := uuid.New()
	b := uuid.New()

	if SubMenuListKey(a) == SubMenuListKey(b) {
		t.Error("submenu lists of different menus must use different keys")
	}
	if DishListKey(a) == DishListKey(b) {
		t.Error("dish lists of different submenus must use different keys")
	}
}

func BenchmarkDefaultKeySerializer(b *testing.B) {
	serializer := NewDefaultKeySerializer()
	id := uuid.New()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		serializer.SerializeKey(KindDish, id)
	}
}
