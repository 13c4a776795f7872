package fattree

// desc.go holds the serializable description of a built topology.  The
// run-time structures carry pointers for ease of traversal; the Desc
// forms replace every pointer with the name of the switch it refers to,
// so a description is fully instantiated and can be written to and read
// from yaml or json files.

import (
	"encoding/json"
	"os"
	"path"

	"gopkg.in/yaml.v3"
)

// SwitchDesc is the serializable form of one switch
type SwitchDesc struct {
	Name  string `json:"name" yaml:"name"`
	Tier  string `json:"tier" yaml:"tier"`
	Pod   int    `json:"pod" yaml:"pod"`
	Index int    `json:"index" yaml:"index"`
	Ports int    `json:"ports" yaml:"ports"`

	// adjacency by switch name, preserving the wiring order
	Uplinks   []string `json:"uplinks" yaml:"uplinks"`
	Downlinks []string `json:"downlinks" yaml:"downlinks"`

	// compute nodes bound to an edge switch
	Nodes []int `json:"nodes" yaml:"nodes"`
}

// TopoDesc is the serializable form of a whole topology
type TopoDesc struct {
	Name  string       `json:"name" yaml:"name"`
	K     int          `json:"k" yaml:"k"`
	Cores []SwitchDesc `json:"cores" yaml:"cores"`
	Aggs  []SwitchDesc `json:"aggs" yaml:"aggs"`
	Edges []SwitchDesc `json:"edges" yaml:"edges"`
}

// transformSwitch converts a run-time switch into its description
func transformSwitch(swtch *Switch) SwitchDesc {
	sd := new(SwitchDesc)
	sd.Name = swtch.SwitchName
	sd.Tier = swtch.SwitchTier.String()
	sd.Pod = swtch.SwitchPod
	sd.Index = swtch.TierIndex
	sd.Ports = swtch.Ports

	sd.Uplinks = make([]string, len(swtch.Uplinks))
	for idx := 0; idx < len(swtch.Uplinks); idx += 1 {
		sd.Uplinks[idx] = swtch.Uplinks[idx].SwitchName
	}

	sd.Downlinks = make([]string, len(swtch.Downlinks))
	for idx := 0; idx < len(swtch.Downlinks); idx += 1 {
		sd.Downlinks[idx] = swtch.Downlinks[idx].SwitchName
	}

	sd.Nodes = make([]int, len(swtch.EdgeNodes))
	for idx := 0; idx < len(swtch.EdgeNodes); idx += 1 {
		sd.Nodes[idx] = int(swtch.EdgeNodes[idx])
	}

	return *sd
}

// Transform converts the run-time topology into its serializable
// description under the given model name
func (topo *Topology) Transform(name string) TopoDesc {
	topo.mu.RLock()
	defer topo.mu.RUnlock()

	td := new(TopoDesc)
	td.Name = name
	td.K = topo.K

	td.Cores = make([]SwitchDesc, len(topo.CoreSwitches))
	for idx := 0; idx < len(topo.CoreSwitches); idx += 1 {
		td.Cores[idx] = transformSwitch(topo.CoreSwitches[idx])
	}

	td.Aggs = make([]SwitchDesc, len(topo.AggSwitches))
	for idx := 0; idx < len(topo.AggSwitches); idx += 1 {
		td.Aggs[idx] = transformSwitch(topo.AggSwitches[idx])
	}

	td.Edges = make([]SwitchDesc, len(topo.EdgeSwitches))
	for idx := 0; idx < len(topo.EdgeSwitches); idx += 1 {
		td.Edges[idx] = transformSwitch(topo.EdgeSwitches[idx])
	}

	return *td
}

// WriteToFile stores the TopoDesc struct to the file whose name is given.
// Serialization to json or to yaml is selected based on the extension of this name.
func (td *TopoDesc) WriteToFile(filename string) error {
	pathExt := path.Ext(filename)
	var bytes []byte
	var merr error = nil

	if pathExt == ".yaml" || pathExt == ".YAML" || pathExt == ".yml" {
		bytes, merr = yaml.Marshal(*td)
	} else if pathExt == ".json" || pathExt == ".JSON" {
		bytes, merr = json.MarshalIndent(*td, "", "\t")
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

// ReadTopoDesc deserializes a byte slice holding a representation of a
// TopoDesc struct.  If the input argument of dict (those bytes) is
// empty, the file whose name is given is read to acquire them.  A
// deserialized representation is returned, or an error if one is
// generated from a file read or the deserialization.
func ReadTopoDesc(filename string, useYAML bool, dict []byte) (*TopoDesc, error) {
	var err error

	if len(dict) == 0 {
		dict, err = os.ReadFile(filename)
		if err != nil {
			return nil, err
		}
	}

	example := TopoDesc{}

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
