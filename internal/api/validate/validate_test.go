package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequired(t *testing.T) {
	assert.Nil(t, Required("email", "a@b.c"))

	e := Required("email", "   ")
	if assert.NotNil(t, e) {
		assert.Equal(t, "email", e.Field)
	}
}

func TestAmount(t *testing.T) {
	d, e := Amount("amount", " 10.50 ")
	assert.Nil(t, e)
	assert.Equal(t, "10.5", d.String())

	for _, bad := range []string{"", "abc", "0", "-1", "1e"} {
		_, e := Amount("amount", bad)
		assert.NotNil(t, e, "value=%q", bad)
	}
}

func TestErrsMessage(t *testing.T) {
	errs := Errs{
		{Field: "amount", Msg: "must be > 0"},
		{Field: "receiver", Msg: "required"},
	}
	assert.Equal(t, "amount: must be > 0; receiver: required", errs.Error())
}
