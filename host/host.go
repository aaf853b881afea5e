// Package host implements instance/device/queue bootstrap (L2): the
// generalization of the teacher's VulkanContext + device-selection pair
// into a renderer-agnostic GPU handle any number of canvases share.
package host

import (
	"fmt"
	"os"

	vk "github.com/goki/vulkan"

	"github.com/datoviz/datoviz-sub007/config"
	"github.com/datoviz/datoviz-sub007/core"
)

// Host owns the Vulkan instance, the chosen physical/logical device, its
// queues, and the first-fit memory-type lookup (FindMemoryIndex) shared by
// every Dat/Tex the renderer creates.
type Host struct {
	Instance       vk.Instance
	PhysicalDevice vk.PhysicalDevice
	Device         vk.Device
	Allocator      *vk.AllocationCallbacks

	GraphicsQueueIndex uint32
	PresentQueueIndex  uint32
	TransferQueueIndex uint32
	GraphicsQueue      vk.Queue
	PresentQueue       vk.Queue
	TransferQueue      vk.Queue

	GraphicsCommandPool vk.CommandPool

	Memory vk.PhysicalDeviceMemoryProperties

	ValidationEnabled bool
	errCallback       func(error)
}

// Surfacer abstracts the windowing layer's ability to produce a Vulkan
// surface and list the instance extensions it requires, so host does not
// import platform directly.
type Surfacer interface {
	RequiredInstanceExtensions() []string
	CreateSurface(instance vk.Instance) (vk.Surface, error)
}

// New bootstraps a Host from the given engine configuration. If surf is
// non-nil, the instance extensions it requires are enabled. Device
// selection does not check presentation support; the swapchain device
// extension is enabled unless DVZ_OFFSCREEN is set.
func New(cfg *config.EngineConfig, surf Surfacer) (*Host, error) {
	h := &Host{ValidationEnabled: cfg.ValidationLayers}

	if err := h.createInstance(cfg, surf); err != nil {
		return nil, core.NewError(core.ErrorKindUnsupportedFeature, err)
	}
	if err := h.selectPhysicalDevice(); err != nil {
		return nil, core.NewError(core.ErrorKindUnsupportedFeature, err)
	}
	if err := h.createLogicalDevice(); err != nil {
		return nil, core.NewError(core.ErrorKindUnsupportedFeature, err)
	}
	vk.GetPhysicalDeviceMemoryProperties(h.PhysicalDevice, &h.Memory)
	h.Memory.Deref()

	poolInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: h.GraphicsQueueIndex,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}
	var pool vk.CommandPool
	if res := vk.CreateCommandPool(h.Device, &poolInfo, h.Allocator, &pool); res != vk.Success {
		return nil, core.NewErrorf(core.ErrorKindResourceExhausted, "vkCreateCommandPool failed: %d", res)
	}
	h.GraphicsCommandPool = pool

	core.LogInfo("host initialized (validation=%v)", h.ValidationEnabled)
	return h, nil
}

func (h *Host) createInstance(cfg *config.EngineConfig, surf Surfacer) error {
	appInfo := vk.ApplicationInfo{
		SType:         vk.StructureTypeApplicationInfo,
		PApplicationName: "datoviz\x00",
		ApplicationVersion: vk.MakeVersion(1, 0, 0),
		PEngineName:        "datoviz\x00",
		EngineVersion:      vk.MakeVersion(1, 0, 0),
		ApiVersion:         vk.ApiVersion10,
	}

	extensions := []string{}
	if surf != nil {
		extensions = append(extensions, surf.RequiredInstanceExtensions()...)
	}
	var layers []string
	if cfg.ValidationLayers {
		layers = append(layers, "VK_LAYER_KHRONOS_validation\x00")
	}

	createInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        &appInfo,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     layers,
	}

	var instance vk.Instance
	if res := vk.CreateInstance(&createInfo, h.Allocator, &instance); res != vk.Success {
		return fmt.Errorf("vkCreateInstance failed: %d", res)
	}
	h.Instance = instance
	return vk.InitInstance(instance)
}

// selectPhysicalDevice picks the first discrete GPU, falling back to the
// first device enumerated, mirroring the teacher's device-selection loop
// generalized away from a single hardcoded requirement set.
func (h *Host) selectPhysicalDevice() error {
	var count uint32
	vk.EnumeratePhysicalDevices(h.Instance, &count, nil)
	if count == 0 {
		return fmt.Errorf("no Vulkan-capable physical devices found")
	}
	devices := make([]vk.PhysicalDevice, count)
	vk.EnumeratePhysicalDevices(h.Instance, &count, devices)

	best := devices[0]
	for _, d := range devices {
		var props vk.PhysicalDeviceProperties
		vk.GetPhysicalDeviceProperties(d, &props)
		props.Deref()
		if props.DeviceType == vk.PhysicalDeviceTypeDiscreteGpu {
			best = d
			break
		}
	}
	h.PhysicalDevice = best

	var familyCount uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(best, &familyCount, nil)
	families := make([]vk.QueueFamilyProperties, familyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(best, &familyCount, families)
	for i, f := range families {
		f.Deref()
		if vk.QueueFlagBits(f.QueueFlags)&vk.QueueGraphicsBit != 0 {
			h.GraphicsQueueIndex = uint32(i)
			h.PresentQueueIndex = uint32(i)
		}
		if vk.QueueFlagBits(f.QueueFlags)&vk.QueueTransferBit != 0 {
			h.TransferQueueIndex = uint32(i)
		}
	}
	return nil
}

func (h *Host) createLogicalDevice() error {
	priorities := []float32{1.0}
	seen := map[uint32]bool{}
	var queueInfos []vk.DeviceQueueCreateInfo
	for _, idx := range []uint32{h.GraphicsQueueIndex, h.PresentQueueIndex, h.TransferQueueIndex} {
		if seen[idx] {
			continue
		}
		seen[idx] = true
		queueInfos = append(queueInfos, vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: idx,
			QueueCount:       1,
			PQueuePriorities: priorities,
		})
	}

	var features vk.PhysicalDeviceFeatures
	vk.GetPhysicalDeviceFeatures(h.PhysicalDevice, &features)
	features.Deref()

	extensions := []string{}
	if os.Getenv("DVZ_OFFSCREEN") == "" {
		extensions = append(extensions, "VK_KHR_swapchain\x00")
	}

	createInfo := vk.DeviceCreateInfo{
		SType:                 vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:  uint32(len(queueInfos)),
		PQueueCreateInfos:     queueInfos,
		PEnabledFeatures:      []vk.PhysicalDeviceFeatures{features},
		EnabledExtensionCount: uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
	}

	var device vk.Device
	if res := vk.CreateDevice(h.PhysicalDevice, &createInfo, h.Allocator, &device); res != vk.Success {
		return fmt.Errorf("vkCreateDevice failed: %d", res)
	}
	h.Device = device

	var gq, pq, tq vk.Queue
	vk.GetDeviceQueue(device, h.GraphicsQueueIndex, 0, &gq)
	vk.GetDeviceQueue(device, h.PresentQueueIndex, 0, &pq)
	vk.GetDeviceQueue(device, h.TransferQueueIndex, 0, &tq)
	h.GraphicsQueue, h.PresentQueue, h.TransferQueue = gq, pq, tq
	return nil
}

// FindMemoryIndex mirrors the teacher's VulkanContext.FindMemoryIndex,
// generalized to be a Host method usable by every Buffer/Image allocation
// in the gpu package.
func (h *Host) FindMemoryIndex(typeFilter uint32, propertyFlags vk.MemoryPropertyFlagBits) (int32, error) {
	for i := uint32(0); i < h.Memory.MemoryTypeCount; i++ {
		h.Memory.MemoryTypes[i].Deref()
		if (typeFilter&(1<<i)) != 0 && (vk.MemoryPropertyFlagBits(h.Memory.MemoryTypes[i].PropertyFlags)&propertyFlags) == propertyFlags {
			return int32(i), nil
		}
	}
	return -1, core.NewErrorf(core.ErrorKindResourceExhausted, "no suitable memory type for filter=%x flags=%v", typeFilter, propertyFlags)
}

// OnError installs the process-level error callback (spec.md §9: "the
// rewrite must thread [the error callback] through the Host or App state
// explicitly" instead of a module-level global).
func (h *Host) OnError(fn func(error)) {
	h.errCallback = fn
}

// ReportError routes err to the installed callback, if any, and always
// logs it.
func (h *Host) ReportError(err error) {
	core.LogError(err.Error())
	if h.errCallback != nil {
		h.errCallback(err)
	}
}

// WaitIdle blocks until the graphics queue (and therefore the device, in
// the single-queue-family default) has no outstanding work, the
// precondition for tearing down or recreating a swapchain.
func (h *Host) WaitIdle() error {
	if res := vk.DeviceWaitIdle(h.Device); res != vk.Success {
		return core.NewErrorf(core.ErrorKindDeviceLost, "vkDeviceWaitIdle failed: %d", res)
	}
	return nil
}

// Destroy tears down the device then the instance, the reverse of New's
// construction order (spec.md §9).
func (h *Host) Destroy() {
	if h.GraphicsCommandPool != vk.NullCommandPool {
		vk.DestroyCommandPool(h.Device, h.GraphicsCommandPool, h.Allocator)
	}
	if h.Device != vk.NullDevice {
		vk.DestroyDevice(h.Device, h.Allocator)
	}
	if h.Instance != vk.NullInstance {
		vk.DestroyInstance(h.Instance, h.Allocator)
	}
}
