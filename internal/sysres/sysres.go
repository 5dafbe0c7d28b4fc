// Package sysres guards project creation against exhausted system
// resources.
package sysres

import (
	"os"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/nordstat/prosjekt/internal/errs"
)

// usageLimitPercent is the threshold above which creation is refused.
const usageLimitPercent = 95.0

// Home directories live on different partitions on-premises and in the
// cloud environment.
const (
	cloudHomeDir  = "/home/jovyan"
	onpremHomeDir = "/ssb/bruker"
)

// CheckAvailable refuses to proceed when virtual memory, swap, or the home
// partition is more than 95% used.
func CheckAvailable(onprem bool) error {
	if vm, err := mem.VirtualMemory(); err == nil && vm.Total > 0 {
		if Exceeds(vm.Used, vm.Total) {
			return memoryError()
		}
	}

	if swap, err := mem.SwapMemory(); err == nil && swap.Total > 0 {
		if Exceeds(swap.Used, swap.Total) {
			return memoryError()
		}
	}

	// The disk check only applies on the managed Jupyter platform.
	if _, err := os.Stat(cloudHomeDir); err != nil {
		return nil
	}

	homeDir := cloudHomeDir
	if onprem {
		homeDir = onpremHomeDir
	}

	if usage, err := disk.Usage(homeDir); err == nil && usage.Total > 0 {
		if Exceeds(usage.Used, usage.Total) {
			return errs.NewValidation("disk-full",
				"Remaining disk space is less than 5%. Please free some disk space before creating a new project. Terminating.")
		}
	}

	return nil
}

// Exceeds reports whether used is above the 95% limit of total.
func Exceeds(used, total uint64) bool {
	if total == 0 {
		return false
	}
	return float64(used)/float64(total)*100 > usageLimitPercent
}

func memoryError() error {
	return errs.NewValidation("memory-full",
		"Remaining free memory is less than 5%. Please free some memory (for example by terminating running programs) before continuing. Terminating.")
}
