package fattree

// param.go holds the configured coefficients the metrics estimator
// works from, with defaults and file readers/writers.  Serialization to
// json or yaml is chosen by file extension, matching the rest of the
// configuration surface.

import (
	"encoding/json"
	"os"
	"path"

	"gopkg.in/yaml.v3"
)

// PerfParams carries the per-link and per-switch planning constants.
// Capacity is in Gbps, cost in abstract cost units per switch, power in
// kW per switch.
type PerfParams struct {
	LinkCapacity float64 `json:"linkcapacity" yaml:"linkcapacity"`

	CoreUnitCost float64 `json:"coreunitcost" yaml:"coreunitcost"`
	AggUnitCost  float64 `json:"aggunitcost" yaml:"aggunitcost"`
	EdgeUnitCost float64 `json:"edgeunitcost" yaml:"edgeunitcost"`

	CorePowerKW float64 `json:"corepowerkw" yaml:"corepowerkw"`
	AggPowerKW  float64 `json:"aggpowerkw" yaml:"aggpowerkw"`
	EdgePowerKW float64 `json:"edgepowerkw" yaml:"edgepowerkw"`
}

// DefaultPerfParams gives the stock coefficients: 10 Gbps links, core,
// aggregation, and edge switches at 50/30/20 cost units and 5/3/2 kW
func DefaultPerfParams() PerfParams {
	return PerfParams{
		LinkCapacity: 10.0,
		CoreUnitCost: 50.0,
		AggUnitCost:  30.0,
		EdgeUnitCost: 20.0,
		CorePowerKW:  5.0,
		AggPowerKW:   3.0,
		EdgePowerKW:  2.0,
	}
}

// SetPerfParams installs new coefficients and refreshes the stored
// metrics snapshot
func (topo *Topology) SetPerfParams(pp PerfParams) {
	topo.mu.Lock()
	defer topo.mu.Unlock()

	topo.perf = pp
	topo.metrics = topo.computeMetrics(len(topo.assigned))
}

// PerfParamsInUse reports the currently installed coefficients
func (topo *Topology) PerfParamsInUse() PerfParams {
	topo.mu.RLock()
	defer topo.mu.RUnlock()

	return topo.perf
}

// WriteToFile stores the PerfParams struct to the file whose name is given.
// Serialization to json or to yaml is selected based on the extension of this name.
func (pp *PerfParams) WriteToFile(filename string) error {
	pathExt := path.Ext(filename)
	var bytes []byte
	var merr error = nil

	if pathExt == ".yaml" || pathExt == ".YAML" || pathExt == ".yml" {
		bytes, merr = yaml.Marshal(*pp)
	} else if pathExt == ".json" || pathExt == ".JSON" {
		bytes, merr = json.MarshalIndent(*pp, "", "\t")
	}

	if merr != nil {
		panic(merr)
	}

	f, cerr := os.Create(filename)
	if cerr != nil {
		panic(cerr)
	}
	_, werr := f.WriteString(string(bytes[:]))
	if werr != nil {
		panic(werr)
	}
	err := f.Close()
	if err != nil {
		panic(err)
	}

	return werr
}

// ReadPerfParams deserializes a byte slice holding a representation of a
// PerfParams struct.  If the dict argument is empty the named file is
// read to acquire the bytes.  The deserialized coefficients are
// returned, or an error from the file read or the deserialization.
func ReadPerfParams(filename string, useYAML bool, dict []byte) (*PerfParams, error) {
	var err error

	if len(dict) == 0 {
		dict, err = os.ReadFile(filename)
		if err != nil {
			return nil, err
		}
	}

	example := PerfParams{}

	if useYAML {
		err = yaml.Unmarshal(dict, &example)
	} else {
		err = json.Unmarshal(dict, &example)
	}

	if err != nil {
		return nil, err
	}

	return &example, nil
}
