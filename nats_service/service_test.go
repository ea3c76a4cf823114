package nats_service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/canopyhq/canopy-chat-server/config"
)

func TestSubject(t *testing.T) {
	cfg := config.Default()
	cfg.SubjectPrefix = "conversations"
	s := &NatsService{cfg: cfg}

	assert.Equal(t, "conversations.conv-42", s.subject("conv-42"))
}
