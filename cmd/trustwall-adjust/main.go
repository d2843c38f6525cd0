package main

import (
	"flag"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
	"k8s.io/utils/exec"

	"github.com/trustwall/trustwall/pkg/adjust"
	"github.com/trustwall/trustwall/pkg/fw/driver/cmdline"
)

func parseRate(arg string) (*uint32, error) {
	v, err := strconv.ParseUint(arg, 10, 32)
	if err != nil || v == 0 {
		return nil, errors.Errorf("invalid rate %q", arg)
	}
	r := uint32(v)
	return &r, nil
}

func run(args []string) error {
	index, err := strconv.Atoi(args[0])
	if err != nil || index < 0 {
		return errors.Errorf("invalid interface index %q", args[0])
	}

	var in, out *uint32
	if len(args) > 1 {
		if len(args) != 3 {
			return errors.New("inbound and outbound rates must be given together")
		}
		if in, err = parseRate(args[1]); err != nil {
			return err
		}
		if out, err = parseRate(args[2]); err != nil {
			return err
		}
	}

	log := klog.NewKlogr()
	driver := cmdline.NewIpfwCmdLineImpl(log, exec.New())
	adjuster := adjust.NewAdjuster(driver, adjust.NewProfileSchedule(), log)
	return adjuster.Adjust(index, in, out)
}

func main() {
	klog.InitFlags(nil)

	cmd := &cobra.Command{
		Use:  "trustwall-adjust index [in-kbps out-kbps]",
		Long: `reconfigures the bandwidth pipes of one interface index, by explicit rates or by the profile schedule`,
		Args: cobra.RangeArgs(1, 3),
		Run: func(cmd *cobra.Command, args []string) {
			if err := run(args); err != nil {
				klog.Exit(err)
			}
		},
	}
	cmd.Flags().AddGoFlagSet(flag.CommandLine)

	if err := cmd.Execute(); err != nil {
		klog.Flush()
		os.Exit(1)
	}
	klog.Flush()
}
