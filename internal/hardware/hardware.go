// Package hardware inspects the host and recommends a default model that
// fits it. Routing never depends on it.
package hardware

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/klauspost/cpuid/v2"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"

	"llmrouter/pkg/types"
)

const unknownCPU = "Unknown CPU"

// Probes, swapped out in tests.
var (
	virtualMemory = mem.VirtualMemoryWithContext
	cpuCounts     = cpu.CountsWithContext
	cpuInfo       = cpu.InfoWithContext
	cpuBrand      = func() string { return cpuid.CPU.BrandName }
)

// Detector gathers HardwareInfo. GPU and VRAM cannot be probed portably, so
// they come from operator configuration.
type Detector struct {
	GPU    string
	VRAMGB uint64
}

// Detect is Detector{}.Detect.
func Detect(ctx context.Context) (types.HardwareInfo, error) {
	return Detector{}.Detect(ctx)
}

// Detect reads CPU and memory details. It fails only when total memory
// cannot be determined; missing CPU details degrade to placeholders.
func (d Detector) Detect(ctx context.Context) (types.HardwareInfo, error) {
	vm, err := virtualMemory(ctx)
	if err != nil {
		return types.HardwareInfo{}, fmt.Errorf("read memory: %w", err)
	}
	info := types.HardwareInfo{
		CPU:     brand(ctx),
		RAMGB:   vm.Total / (1 << 30),
		VRAMGB:  d.VRAMGB,
		OS:      runtime.GOOS,
		Threads: count(ctx, true),
		Cores:   count(ctx, false),
	}
	if info.Cores == 0 {
		info.Cores = info.Threads
	}
	if d.GPU != "" {
		gpu := d.GPU
		info.GPU = &gpu
	}
	return info, nil
}

func brand(ctx context.Context) string {
	if b := strings.TrimSpace(cpuBrand()); b != "" {
		return b
	}
	if infos, err := cpuInfo(ctx); err == nil && len(infos) > 0 {
		if m := strings.TrimSpace(infos[0].ModelName); m != "" {
			return m
		}
	}
	return unknownCPU
}

func count(ctx context.Context, logical bool) int {
	n, err := cpuCounts(ctx, logical)
	if err == nil && n > 0 {
		return n
	}
	if logical {
		return runtime.NumCPU()
	}
	return cpuid.CPU.PhysicalCores
}
