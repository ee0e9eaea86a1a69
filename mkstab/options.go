package mkstab

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/viant/fastmks/fastmks"
	"github.com/viant/fastmks/index/cover"
	"github.com/viant/fastmks/kernel"
)

const defaultK = 10

type tableOptions struct {
	kernel      kernel.Config
	mode        fastmks.Mode
	k           int
	base        float64
	bound       cover.BoundStrategy
	parallelism int
	queries     string
}

// parseTableOptions reads key=value module arguments. Arguments without
// '=' are ignored.
func parseTableOptions(args []string) (tableOptions, error) {
	opts := tableOptions{kernel: kernel.Config{Name: "linear"}, k: defaultK}
	for _, raw := range args {
		a := strings.Trim(strings.TrimSpace(raw), `'"`)
		if a == "" {
			continue
		}
		parts := strings.SplitN(a, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(parts[0]))
		val := strings.Trim(strings.TrimSpace(parts[1]), `'"`)
		var err error
		switch key {
		case "kernel":
			opts.kernel.Name = val
		case "degree":
			opts.kernel.Degree, err = strconv.ParseFloat(val, 64)
		case "offset":
			opts.kernel.Offset, err = strconv.ParseFloat(val, 64)
		case "bandwidth":
			opts.kernel.Bandwidth, err = strconv.ParseFloat(val, 64)
		case "scale":
			opts.kernel.Scale, err = strconv.ParseFloat(val, 64)
		case "mode":
			opts.mode, err = fastmks.ParseMode(val)
		case "k":
			opts.k, err = strconv.Atoi(val)
			if err == nil && opts.k <= 0 {
				err = fmt.Errorf("must be positive")
			}
		case "base":
			opts.base, err = strconv.ParseFloat(val, 64)
		case "bound":
			opts.bound, err = fastmks.ParseBoundStrategy(val)
		case "parallel":
			switch strings.ToLower(val) {
			case "", "0", "off":
				opts.parallelism = 0
			default:
				opts.parallelism, err = strconv.Atoi(val)
			}
		case "queries":
			opts.queries = val
		default:
			return opts, fmt.Errorf("mks_knn: unknown option %q", key)
		}
		if err != nil {
			return opts, fmt.Errorf("mks_knn: option %s=%q: %w", key, val, err)
		}
	}
	if _, err := kernel.New(opts.kernel); err != nil {
		return opts, fmt.Errorf("mks_knn: %w", err)
	}
	return opts, nil
}

func (o tableOptions) fastmksOptions() []fastmks.Option {
	return []fastmks.Option{
		fastmks.WithMode(o.mode),
		fastmks.WithBase(o.base),
		fastmks.WithBoundStrategy(o.bound),
		fastmks.WithParallelism(o.parallelism),
	}
}
