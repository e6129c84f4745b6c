package hardware

import (
	"context"
	"errors"
	"runtime"
	"testing"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llmrouter/pkg/types"
)

func stubProbes(t *testing.T) {
	t.Helper()
	vm, counts, info, b := virtualMemory, cpuCounts, cpuInfo, cpuBrand
	t.Cleanup(func() { virtualMemory, cpuCounts, cpuInfo, cpuBrand = vm, counts, info, b })

	virtualMemory = func(context.Context) (*mem.VirtualMemoryStat, error) {
		return &mem.VirtualMemoryStat{Total: 32 << 30}, nil
	}
	cpuCounts = func(_ context.Context, logical bool) (int, error) {
		if logical {
			return 16, nil
		}
		return 8, nil
	}
	cpuInfo = func(context.Context) ([]cpu.InfoStat, error) { return nil, errors.New("unsupported") }
	cpuBrand = func() string { return "AMD Ryzen 7 7700X 8-Core Processor" }
}

func TestDetect(t *testing.T) {
	stubProbes(t)

	info, err := Detector{GPU: "NVIDIA RTX 4070", VRAMGB: 12}.Detect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "AMD Ryzen 7 7700X 8-Core Processor", info.CPU)
	assert.EqualValues(t, 32, info.RAMGB)
	assert.EqualValues(t, 12, info.VRAMGB)
	require.NotNil(t, info.GPU)
	assert.Equal(t, "NVIDIA RTX 4070", *info.GPU)
	assert.Equal(t, 8, info.Cores)
	assert.Equal(t, 16, info.Threads)
	assert.Equal(t, runtime.GOOS, info.OS)
}

func TestDetectFallbacks(t *testing.T) {
	stubProbes(t)
	cpuBrand = func() string { return "" }
	cpuInfo = func(context.Context) ([]cpu.InfoStat, error) {
		return []cpu.InfoStat{{ModelName: "Apple M2"}}, nil
	}
	cpuCounts = func(_ context.Context, logical bool) (int, error) {
		if logical {
			return 8, nil
		}
		return 0, errors.New("no topology")
	}

	info, err := Detect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Apple M2", info.CPU)
	assert.Nil(t, info.GPU)
	assert.Positive(t, info.Cores)

	cpuInfo = func(context.Context) ([]cpu.InfoStat, error) { return nil, nil }
	info, err = Detect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, unknownCPU, info.CPU)
}

func TestDetectMemoryFailure(t *testing.T) {
	stubProbes(t)
	virtualMemory = func(context.Context) (*mem.VirtualMemoryStat, error) { return nil, errors.New("denied") }
	_, err := Detect(context.Background())
	require.Error(t, err)
}

func TestRecommendModel(t *testing.T) {
	cases := []struct {
		ram, vram uint64
		want      string
	}{
		{32, 16, ModelLarge},
		{8, 24, ModelLarge},
		{32, 8, ModelMedium},
		{32, 0, ModelSmall},
		{16, 4, ModelSmall},
		{8, 0, ModelTiny},
		{0, 0, ModelTiny},
	}
	for _, c := range cases {
		got := RecommendModel(types.HardwareInfo{RAMGB: c.ram, VRAMGB: c.vram})
		assert.Equal(t, c.want, got, "ram=%d vram=%d", c.ram, c.vram)
	}
}
