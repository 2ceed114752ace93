package validatex

import (
	"testing"

	"github.com/maachbazar/whatsapp-agent/errx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type inbound struct {
	ID        string `json:"id" validatex:"required"`
	From      string `json:"from" validatex:"required,numeric,max=20"`
	Type      string `json:"type" validatex:"oneof=text interactive button image"`
	Timestamp string `json:"timestamp" validatex:"numeric"`
	Note      string
}

type wrapper struct {
	Message *inbound `json:"message" validatex:"required"`
}

func TestValidatePasses(t *testing.T) {
	err := Validate(inbound{ID: "wamid.1", From: "919800000000", Type: "text", Timestamp: "1700000000"})
	assert.NoError(t, err)
}

func TestValidateOptionalEmptySkipsRules(t *testing.T) {
	err := Validate(&inbound{ID: "wamid.1", From: "9198"})
	assert.NoError(t, err)
}

func TestValidateReportsEveryField(t *testing.T) {
	err := Validate(inbound{From: "  ", Type: "sticker"})
	require.Error(t, err)
	assert.True(t, errx.IsCode(err, ErrInvalid))

	var xerr *errx.Error
	require.ErrorAs(t, err, &xerr)
	assert.Equal(t, "required", xerr.Details["id"])
	assert.Equal(t, "required", xerr.Details["from"])
	assert.Equal(t, "oneof=text interactive button image", xerr.Details["type"])
	assert.NotContains(t, xerr.Details, "Note")
}

func TestValidateFirstFailedRuleWins(t *testing.T) {
	err := Validate(inbound{ID: "x", From: "91-98"})
	var xerr *errx.Error
	require.ErrorAs(t, err, &xerr)
	assert.Equal(t, "numeric", xerr.Details["from"])

	err = Validate(inbound{ID: "x", From: "123456789012345678901"})
	require.ErrorAs(t, err, &xerr)
	assert.Equal(t, "max=20", xerr.Details["from"])
}

func TestValidateNested(t *testing.T) {
	err := Validate(wrapper{})
	var xerr *errx.Error
	require.ErrorAs(t, err, &xerr)
	assert.Equal(t, "required", xerr.Details["message"])

	err = Validate(wrapper{Message: &inbound{From: "1"}})
	require.ErrorAs(t, err, &xerr)
	assert.Equal(t, "required", xerr.Details["message.id"])
}

func TestValidateNotStruct(t *testing.T) {
	err := Validate("nope")
	assert.True(t, errx.IsCode(err, ErrNotStruct))

	var nilPtr *inbound
	assert.True(t, errx.IsCode(Validate(nilPtr), ErrNotStruct))
}

func TestUnknownRule(t *testing.T) {
	type bad struct {
		Name string `validatex:"shiny"`
	}
	assert.True(t, errx.IsCode(Validate(bad{Name: "x"}), ErrUnknownRule))
}

func TestCustomRule(t *testing.T) {
	RegisterValidationFunc("wamid", func(value any, _ string) bool {
		s, ok := value.(string)
		return ok && len(s) > 6 && s[:6] == "wamid."
	})
	type msg struct {
		ID string `json:"id" validatex:"required,wamid"`
	}
	assert.NoError(t, Validate(msg{ID: "wamid.ABC"}))
	assert.True(t, errx.IsCode(Validate(msg{ID: "ABC"}), ErrInvalid))
}

func TestRegexAndMin(t *testing.T) {
	type order struct {
		Ref string `validatex:"regex=^ORD[0-9]+$,min=6"`
	}
	assert.NoError(t, Validate(order{Ref: "ORD123"}))
	assert.Error(t, Validate(order{Ref: "ORD12"}))
	assert.Error(t, Validate(order{Ref: "XYZ1234"}))
}
