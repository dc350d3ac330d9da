package di

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ssargent/binscript/pkg/api"
)

type stubArchiveFactory struct {
	api.ArchiveFactory
}

type stubServerFactory struct {
	api.ServerFactory
}

func TestContainer(t *testing.T) {
	c := NewContainer()

	assert.IsType(t, &api.DefaultArchiveFactory{}, c.GetArchiveFactory())
	assert.IsType(t, &api.DefaultServerFactory{}, c.GetServerFactory())

	archives := &stubArchiveFactory{}
	servers := &stubServerFactory{}
	c.SetArchiveFactory(archives)
	c.SetServerFactory(servers)

	assert.Same(t, archives, c.GetArchiveFactory())
	assert.Same(t, servers, c.GetServerFactory())
}
