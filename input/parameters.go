package input

import (
	"fmt"
	"sort"

	"github.com/ghodss/yaml"
)

// Parameters obtained from the YAML problem deck
type Parameters struct {
	Title       string          `yaml:"Title"`
	Dimension   int             `yaml:"Dimension"` // 1 or 2
	GridSize    int             `yaml:"GridSize"`  // cells per direction
	XMax        float64         `yaml:"XMax"`      // domain extent (1D)
	Species     int             `yaml:"Species"`
	Diffusion   float64         `yaml:"Diffusion"` // two point flux coefficient
	Reaction    float64         `yaml:"Reaction"`  // linear reaction rate
	Source      float64         `yaml:"Source"`    // constant volumetric source
	TimeStep    float64         `yaml:"TimeStep"`
	Steps       int             `yaml:"Steps"`     // number of transient steps
	BC0         []int           `yaml:"BC0"`       // boundary regions held at 0
	BC1         []int           `yaml:"BC1"`       // boundary regions held at 1
	Dirichlet   map[int]float64 `yaml:"Dirichlet"` // region -> value for the physical solve
	Solver      string          `yaml:"Solver"`    // "lu" or "cg"
	CGTolerance float64         `yaml:"CGTolerance"`
	CGMaxIter   int             `yaml:"CGMaxIter"`
	Workers     int             `yaml:"Workers"`
}

func (p *Parameters) Parse(data []byte) error {
	if err := yaml.Unmarshal(data, p); err != nil {
		return err
	}
	return p.validate()
}

func (p *Parameters) validate() error {
	if p.Dimension != 1 && p.Dimension != 2 {
		return fmt.Errorf("Dimension must be 1 or 2, got %d", p.Dimension)
	}
	if p.GridSize < 1 {
		return fmt.Errorf("GridSize must be positive, got %d", p.GridSize)
	}
	if p.Species < 1 {
		return fmt.Errorf("Species must be positive, got %d", p.Species)
	}
	switch p.Solver {
	case "", "lu", "cg":
	default:
		return fmt.Errorf("unknown Solver %q, want \"lu\" or \"cg\"", p.Solver)
	}
	return nil
}

func (p *Parameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", p.Title)
	fmt.Printf("[%d]\t\t\t= Dimension\n", p.Dimension)
	fmt.Printf("[%d]\t\t\t= GridSize\n", p.GridSize)
	fmt.Printf("[%d]\t\t\t= Species\n", p.Species)
	fmt.Printf("%8.5f\t\t= Diffusion\n", p.Diffusion)
	fmt.Printf("%8.5f\t\t= TimeStep\n", p.TimeStep)
	fmt.Printf("BC0 = %v, BC1 = %v\n", p.BC0, p.BC1)
	keys := make([]int, 0, len(p.Dirichlet))
	for r := range p.Dirichlet {
		keys = append(keys, r)
	}
	sort.Ints(keys)
	for _, r := range keys {
		fmt.Printf("Dirichlet[%d] = %v\n", r, p.Dirichlet[r])
	}
}
