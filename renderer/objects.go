package renderer

import (
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/datoviz/datoviz-sub007/core"
	"github.com/datoviz/datoviz-sub007/gpu"
	"github.com/datoviz/datoviz-sub007/request"
)

func (r *Renderer) createDat(req request.Request) error {
	buf, err := gpu.NewBuffer(r.host, req.Content.BufferType, uint64(req.Content.Count)*uint64(req.Content.ItemSize), true)
	if err != nil {
		return err
	}
	r.dats.Set(req.ID, buf)
	return nil
}

func (r *Renderer) resizeDat(req request.Request) error {
	old, ok := r.dats.Get(req.ID)
	if !ok {
		return core.NewErrorf(core.ErrorKindInvalidId, "resize dat: unknown id %d", req.ID)
	}
	newSize := uint64(req.Content.Width) * uint64(req.Content.Height) * uint64(req.Content.Depth)
	nb, err := gpu.NewBuffer(r.host, old.Type, newSize, true)
	if err != nil {
		return err
	}
	if req.Flags&request.FlagKeepOnResize != 0 {
		if err := copyBuffer(r, old, nb, minU64(old.Size, nb.Size)); err != nil {
			nb.Destroy(r.host)
			return err
		}
	}
	old.Destroy(r.host)
	r.dats.Set(req.ID, nb)
	return nil
}

func copyBuffer(r *Renderer, src, dst *gpu.Buffer, size uint64) error {
	if size == 0 {
		return nil
	}
	cb, err := gpu.AllocateAndBeginSingleUse(r.host, r.host.GraphicsCommandPool)
	if err != nil {
		return err
	}
	region := vk.BufferCopy{Size: vk.DeviceSize(size)}
	vk.CmdCopyBuffer(cb.Handle, src.Handle, dst.Handle, 1, []vk.BufferCopy{region})
	return cb.EndSingleUse(r.host, r.host.GraphicsCommandPool, r.host.GraphicsQueue)
}

func minU64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

func (r *Renderer) uploadDat(req request.Request) error {
	buf, ok := r.dats.Get(req.ID)
	if !ok {
		return core.NewErrorf(core.ErrorKindInvalidId, "upload dat: unknown id %d", req.ID)
	}
	return buf.Upload(r.host, req.Content.Offset, req.Content.Data)
}

// upfillDat repeats Content.Data across [Offset, Offset+Size) — Size need
// not be a multiple of len(Data); the pattern wraps (spec.md upfill op).
func (r *Renderer) upfillDat(req request.Request) error {
	buf, ok := r.dats.Get(req.ID)
	if !ok {
		return core.NewErrorf(core.ErrorKindInvalidId, "upfill dat: unknown id %d", req.ID)
	}
	pattern := req.Content.Data
	if len(pattern) == 0 {
		return core.NewErrorf(core.ErrorKindInvalidAction, "upfill dat %d: empty pattern", req.ID)
	}
	out := make([]byte, req.Content.Size)
	for i := range out {
		out[i] = pattern[i%len(pattern)]
	}
	return buf.Upload(r.host, req.Content.Offset, out)
}

func (r *Renderer) downloadDat(req request.Request) error {
	buf, ok := r.dats.Get(req.ID)
	if !ok {
		return core.NewErrorf(core.ErrorKindInvalidId, "download dat: unknown id %d", req.ID)
	}
	if err := buf.Map(r.host); err != nil {
		return err
	}
	defer buf.Unmap(r.host)
	out := make([]byte, req.Content.Size)
	src := unsafe.Slice((*byte)(buf.Mapped), req.Content.Offset+req.Content.Size)
	copy(out, src[req.Content.Offset:])
	r.lastDownload = out
	return nil
}

// deleteDat queues req.ID for destruction; the buffer may still be read by
// a command buffer in flight, so the actual free waits for Renderer.Sweep
// (spec.md §4.2).
func (r *Renderer) deleteDat(req request.Request) error {
	r.dats.MarkDestroyed(req.ID)
	return nil
}

func (r *Renderer) createTex(req request.Request) error {
	img, err := gpu.NewImage(r.host, req.Content.TexDims, req.Content.Width, req.Content.Height, req.Content.Depth,
		vk.Format(req.Content.Format), vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageSampledBit|vk.ImageUsageTransferDstBit|vk.ImageUsageTransferSrcBit),
		true, vk.ImageAspectFlags(vk.ImageAspectColorBit))
	if err != nil {
		return err
	}
	r.texs.Set(req.ID, img)
	return nil
}

func (r *Renderer) resizeTex(req request.Request) error {
	old, ok := r.texs.Get(req.ID)
	if !ok {
		return core.NewErrorf(core.ErrorKindInvalidId, "resize tex: unknown id %d", req.ID)
	}
	dims := uint8(2)
	if req.Content.Depth > 1 {
		dims = 3
	} else if req.Content.Height <= 1 {
		dims = 1
	}
	nimg, err := gpu.NewImage(r.host, dims, req.Content.Width, req.Content.Height, req.Content.Depth,
		old.Format, vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageSampledBit|vk.ImageUsageTransferDstBit|vk.ImageUsageTransferSrcBit),
		true, vk.ImageAspectFlags(vk.ImageAspectColorBit))
	if err != nil {
		return err
	}
	old.Destroy(r.host)
	r.texs.Set(req.ID, nimg)
	return nil
}

func (r *Renderer) uploadTex(req request.Request) error {
	img, ok := r.texs.Get(req.ID)
	if !ok {
		return core.NewErrorf(core.ErrorKindInvalidId, "upload tex: unknown id %d", req.ID)
	}
	staging, err := gpu.NewBuffer(r.host, request.BufferTypeStaging, uint64(len(req.Content.Data)), true)
	if err != nil {
		return err
	}
	defer staging.Destroy(r.host)
	if err := staging.Upload(r.host, 0, req.Content.Data); err != nil {
		return err
	}

	cb, err := gpu.AllocateAndBeginSingleUse(r.host, r.host.GraphicsCommandPool)
	if err != nil {
		return err
	}
	region := vk.BufferImageCopy{
		ImageSubresource: vk.ImageSubresourceLayers{AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit), LayerCount: 1},
		ImageExtent:      vk.Extent3D{Width: img.Width, Height: img.Height, Depth: img.Depth},
	}
	vk.CmdCopyBufferToImage(cb.Handle, staging.Handle, img.Handle, vk.ImageLayoutTransferDstOptimal, 1, []vk.BufferImageCopy{region})
	return cb.EndSingleUse(r.host, r.host.GraphicsCommandPool, r.host.GraphicsQueue)
}

func (r *Renderer) deleteTex(req request.Request) error {
	r.texs.MarkDestroyed(req.ID)
	return nil
}

func (r *Renderer) createSampler(req request.Request) error {
	s, err := gpu.NewSampler(r.host, vk.FilterLinear, vk.SamplerAddressModeRepeat)
	if err != nil {
		return err
	}
	r.samplers.Set(req.ID, s)
	return nil
}

func (r *Renderer) deleteSampler(req request.Request) error {
	r.samplers.MarkDestroyed(req.ID)
	return nil
}
