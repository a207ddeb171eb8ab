package stdlib

import (
	"github.com/shirou/gopsutil/host"
	"github.com/shirou/gopsutil/mem"
	"github.com/tremor-rt/tremor/value"
)

// registerSystem implements system::hostname and system::memory via
// gopsutil, the host-introspection library the teacher already pulls
// in for its own process-health reporting.
func registerSystem(r *Registry) {
	r.Register("system", "hostname", func(args []value.Value) (value.Value, error) {
		info, err := host.Info()
		if err != nil {
			return nil, err
		}
		return value.Str(info.Hostname), nil
	})
	r.Register("system", "uptime", func(args []value.Value) (value.Value, error) {
		info, err := host.Info()
		if err != nil {
			return nil, err
		}
		return value.Int(int64(info.Uptime)), nil
	})
	r.Register("system", "memory", func(args []value.Value) (value.Value, error) {
		vm, err := mem.VirtualMemory()
		if err != nil {
			return nil, err
		}
		rec := value.NewRecord()
		rec.Set("total", value.Int(int64(vm.Total)))
		rec.Set("available", value.Int(int64(vm.Available)))
		rec.Set("used_percent", value.Float(vm.UsedPercent))
		return rec, nil
	})
}
