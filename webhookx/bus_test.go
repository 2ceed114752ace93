package webhookx

import (
	"context"
	"testing"

	"github.com/maachbazar/whatsapp-agent/errx"
	"github.com/maachbazar/whatsapp-agent/eventx"
	"github.com/maachbazar/whatsapp-agent/eventx/eventxmemory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBusMemory(t *testing.T) {
	bus, err := OpenBus(context.Background(), Settings{QueueDriver: DriverMemory})
	require.NoError(t, err)
	assert.IsType(t, &eventxmemory.Bus{}, bus)
}

func TestOpenBusUnsupportedDriver(t *testing.T) {
	_, err := OpenBus(context.Background(), Settings{QueueDriver: "kafka"})
	assert.True(t, errx.IsCode(err, ErrUnsupportedDriver))
}

func TestOpenBusSQSRequiresQueueURL(t *testing.T) {
	_, err := OpenBus(context.Background(), Settings{QueueDriver: DriverSQS})
	assert.True(t, errx.IsCode(err, eventx.ErrConnectionFailed))
}
