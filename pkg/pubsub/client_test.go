package pubsub

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/config"
)

func TestTopicResourceName(t *testing.T) {
	assert.Equal(t, "projects/petco/topics/orders", TopicResourceName("petco", "orders"))
	assert.Equal(t, "projects/other/topics/orders", TopicResourceName("petco", "projects/other/topics/orders"))
	assert.Empty(t, TopicResourceName("", "orders"))
	assert.Empty(t, TopicResourceName("petco", "  "))
}

func TestTopicNamesSkipsBlank(t *testing.T) {
	names := TopicNames(config.PubSubConfig{OrdersTopic: " orders ", BookingsTopic: ""})
	assert.Equal(t, []string{"orders"}, names)
}

func TestClientOptionsPrefersInlineCredentials(t *testing.T) {
	assert.Len(t, ClientOptions(config.GCPConfig{}), 0)
	assert.Len(t, ClientOptions(config.GCPConfig{CredentialsJSON: "{}", ApplicationCredentials: "/tmp/key.json"}), 1)
	assert.Len(t, ClientOptions(config.GCPConfig{ApplicationCredentials: "/tmp/key.json"}), 1)
}

func TestNilClientPing(t *testing.T) {
	var c *Client
	if err := c.Ping(context.Background()); err == nil {
		t.Fatalf("expected error from nil client")
	}
	if c.Publisher("orders") != nil {
		t.Fatalf("expected nil publisher")
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close on nil client: %v", err)
	}
}
