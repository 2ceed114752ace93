package msgx

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/maachbazar/whatsapp-agent/errx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const textEnvelope = `{
  "object": "whatsapp_business_account",
  "entry": [{
    "id": "WABA_ID",
    "changes": [{
      "field": "messages",
      "value": {
        "messaging_product": "whatsapp",
        "metadata": {"display_phone_number": "15550000000", "phone_number_id": "PNID"},
        "contacts": [{"profile": {"name": "Rina"}, "wa_id": "919800000000"}],
        "messages": [{"from": "919800000000", "id": "wamid.1", "timestamp": "1700000000", "type": "text", "text": {"body": "hi"}}]
      }
    }]
  }]
}`

func TestParseEnvelopeMessages(t *testing.T) {
	parsed, err := ParseEnvelope([]byte(textEnvelope))
	require.NoError(t, err)
	require.True(t, parsed.HasMessages())

	msg := parsed.Messages[0]
	assert.Equal(t, "wamid.1", msg.ID)
	assert.Equal(t, "hi", msg.TextBody())
	assert.Equal(t, "PNID", parsed.Metadata.PhoneNumberID)
	assert.Equal(t, "Rina", parsed.Contacts[0].Profile.Name)
}

func TestParseEnvelopeStatuses(t *testing.T) {
	body := `{"object":"whatsapp_business_account","entry":[{"changes":[{"value":{"statuses":[{"id":"wamid.9","status":"delivered","recipient_id":"9198"}]}}]}]}`
	parsed, err := ParseEnvelope([]byte(body))
	require.NoError(t, err)
	assert.False(t, parsed.HasMessages())
	require.Len(t, parsed.Statuses, 1)
	assert.Equal(t, "delivered", parsed.Statuses[0].Status)
}

func TestParseEnvelopeRejectsOtherObjects(t *testing.T) {
	_, err := ParseEnvelope([]byte(`{"object":"page","entry":[]}`))
	assert.True(t, errx.IsCode(err, ErrUnrecognizedEnvelope))

	_, err = ParseEnvelope([]byte(`not json`))
	assert.True(t, errx.IsCode(err, ErrMalformedPayload))
}

func TestParseEnvelopeWithoutEntries(t *testing.T) {
	parsed, err := ParseEnvelope([]byte(`{"object":"whatsapp_business_account"}`))
	require.NoError(t, err)
	assert.False(t, parsed.HasMessages())
	assert.Empty(t, parsed.Statuses)
}

func TestReplyID(t *testing.T) {
	assert.Equal(t, "view_catalog", InboundMessage{Interactive: &Interactive{ButtonReply: &ReplyPick{ID: "view_catalog"}}}.ReplyID())
	assert.Equal(t, "fish_rohu", InboundMessage{Interactive: &Interactive{ListReply: &ReplyPick{ID: "fish_rohu"}}}.ReplyID())
	assert.Equal(t, "track_order", InboundMessage{Button: &ButtonReply{Payload: "track_order"}}.ReplyID())
	assert.Equal(t, "", InboundMessage{Type: TypeText}.ReplyID())
}

func TestInboundValidate(t *testing.T) {
	assert.NoError(t, InboundMessage{ID: "wamid.1", From: "9198"}.Validate())

	err := InboundMessage{ID: "wamid.1"}.Validate()
	assert.True(t, errx.IsCode(err, ErrInvalidMessage))

	assert.NoError(t, InboundMessage{From: "9198"}.Validate(), "id is optional")
}

type recordingSender struct {
	texts        []string
	interactives []InteractiveReply
	read         []string
}

func (r *recordingSender) SendText(_ context.Context, to, body string) (*Response, error) {
	r.texts = append(r.texts, body)
	return &Response{To: to}, nil
}

func (r *recordingSender) SendInteractive(_ context.Context, to string, reply InteractiveReply) (*Response, error) {
	r.interactives = append(r.interactives, reply)
	return &Response{To: to}, nil
}

func (r *recordingSender) MarkAsRead(_ context.Context, id string) error {
	r.read = append(r.read, id)
	return nil
}

func (r *recordingSender) GetProviderName() string { return "recording" }

func TestServiceReplyRoutesByType(t *testing.T) {
	rec := &recordingSender{}
	svc := NewService(rec)
	ctx := context.Background()

	_, err := svc.Reply(ctx, "9198", TextReply{Body: "hello"})
	require.NoError(t, err)
	_, err = svc.Reply(ctx, "9198", &InteractiveReply{Kind: KindButton, Body: "pick"})
	require.NoError(t, err)
	require.NoError(t, svc.MarkAsRead(ctx, "wamid.1"))

	assert.Equal(t, []string{"hello"}, rec.texts)
	require.Len(t, rec.interactives, 1)
	assert.Equal(t, KindButton, rec.interactives[0].Kind)
	assert.Equal(t, []string{"wamid.1"}, rec.read)
}

func TestServiceRejectsEmptyRecipient(t *testing.T) {
	_, err := NewService(&recordingSender{}).Text(context.Background(), " ", "x")
	assert.True(t, errx.IsCode(err, ErrEmptyRecipient))
}

func TestServiceRejectsNilReply(t *testing.T) {
	_, err := NewService(&recordingSender{}).Reply(context.Background(), "9198", nil)
	assert.True(t, errx.IsCode(err, ErrUnsupportedReply))
}

func TestNewDeliveryKeepsBodyVerbatim(t *testing.T) {
	received := time.Date(2024, 3, 1, 10, 0, 0, 0, time.FixedZone("IST", 19800))
	d := NewDelivery([]byte(textEnvelope), received)

	assert.NotEmpty(t, d.ID)
	assert.Equal(t, time.UTC, d.ReceivedAt.Location())
	assert.True(t, d.ReceivedAt.Equal(received))

	encoded, err := json.Marshal(d)
	require.NoError(t, err)

	var decoded Delivery
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	parsed, err := ParseEnvelope(decoded.Body)
	require.NoError(t, err)
	assert.Equal(t, "wamid.1", parsed.Messages[0].ID)
}

func TestNewDeliveryAcceptsAnyBody(t *testing.T) {
	for _, body := range [][]byte{[]byte("{not json"), []byte(""), {0xff, 0x00}} {
		encoded, err := json.Marshal(NewDelivery(body, time.Now()))
		require.NoError(t, err, string(body))

		var decoded Delivery
		require.NoError(t, json.Unmarshal(encoded, &decoded))
		assert.Equal(t, string(body), string(decoded.Body))
	}
}
