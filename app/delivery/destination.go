package delivery

import (
	"context"
	"fmt"
)

const (
	TransportTelegram = "telegram"
	TransportWhatsApp = "whatsapp"
	TransportKafka    = "kafka"
)

// Destination delivers a queued message to one recipient over one transport.
type Destination interface {
	ID() string
	Transport() string
	Send(ctx context.Context, msg Message) error
}

// Registry resolves destination IDs carried by queued messages.
type Registry struct {
	destinations map[string]Destination
	order        []string
}

func NewRegistry(destinations ...Destination) (*Registry, error) {
	r := &Registry{destinations: make(map[string]Destination, len(destinations))}
	for _, d := range destinations {
		if _, exists := r.destinations[d.ID()]; exists {
			return nil, fmt.Errorf("duplicate destination id: %s", d.ID())
		}
		r.destinations[d.ID()] = d
		r.order = append(r.order, d.ID())
	}
	return r, nil
}

func (r *Registry) Get(id string) (Destination, bool) {
	d, ok := r.destinations[id]
	return d, ok
}

// IDs returns destination IDs in registration order.
func (r *Registry) IDs() []string {
	return append([]string(nil), r.order...)
}

func (r *Registry) Len() int {
	return len(r.order)
}
