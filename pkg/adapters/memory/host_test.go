package memory_test

import (
	"testing"

	"github.com/aretw0/waypoint/pkg/adapters/memory"
	"github.com/aretw0/waypoint/pkg/ports"
)

func TestMemoryHost_Contract(t *testing.T) {
	ports.RunHostContract(t, func(t *testing.T) ports.Host {
		return memory.NewHost()
	})
}
