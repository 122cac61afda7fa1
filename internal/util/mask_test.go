package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskUsername(t *testing.T) {
	cases := map[string]string{
		"":                 "",
		"bob":              "***",
		"alice":            "a…e",
		" Alice@Acme.io ":  "a…@a….io",
		"a@x.io":           "a@x.io",
	}
	for in, want := range cases {
		assert.Equal(t, want, MaskUsername(in), in)
	}
}

func TestMaskDSN(t *testing.T) {
	assert.Equal(t, "", MaskDSN(""))
	assert.Equal(t, "***", MaskDSN("host=db user=dir password=secret"))

	got := MaskDSN("postgres://dir:secret@db:5432/directory?sslmode=disable")
	assert.NotContains(t, got, "secret")
	assert.Contains(t, got, "db:5432/directory")
}
