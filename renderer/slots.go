package renderer

import (
	vk "github.com/goki/vulkan"

	"github.com/datoviz/datoviz-sub007/core"
	"github.com/datoviz/datoviz-sub007/gpu"
)

// CreateSlots builds a descriptor set layout directly: Slots has no wire
// request of its own (request.ObjectType has no Slots entry — a descriptor
// layout is assembled program-side by the visual library, not by a client
// over the protocol), so this is a plain renderer method rather than a
// router-dispatched handler, the same way CreateWindowed sidesteps the
// protocol for a live vk.Surface.
func (r *Renderer) CreateSlots(bindings []vk.DescriptorSetLayoutBinding, pushConstants []vk.PushConstantRange) (core.ID, error) {
	s, err := gpu.NewSlots(r.host, bindings, pushConstants)
	if err != nil {
		return 0, err
	}
	id := core.NewID()
	r.slotsObjs.Set(id, s)
	return id, nil
}

// DeleteSlots queues id for destruction; a baked pipeline may still
// reference the descriptor set layout, so the actual Destroy waits for
// Renderer.Sweep, same as the request-routed delete handlers.
func (r *Renderer) DeleteSlots(id core.ID) {
	r.slotsObjs.MarkDestroyed(id)
}
