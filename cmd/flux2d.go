/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/fvmtools/gofvm/fvm"
	"github.com/fvmtools/gofvm/mesh"
)

// Flux2DCmd represents the flux2d command
var Flux2DCmd = &cobra.Command{
	Use:   "flux2d",
	Short: "Boundary flux functional on a triangulated unit square",
	Long: `
Same scenario as the flux command on a 2D triangle mesh of the unit square:
Dirichlet 1 on the left edge and 0 on the right edge, natural boundaries top
and bottom. The net flux through the left edge is the Diffusion coefficient.

gofvm flux2d`,
	Run: func(cmd *cobra.Command, args []string) {
		n, _ := cmd.Flags().GetInt("n")
		w, _ := cmd.Flags().GetInt("workers")
		delaunay, _ := cmd.Flags().GetBool("delaunay")
		Run2DFlux(n, w, delaunay)
	},
}

func init() {
	rootCmd.AddCommand(Flux2DCmd)
	Flux2DCmd.Flags().IntP("n", "n", 20, "intervals per side of the unit square")
	Flux2DCmd.Flags().IntP("workers", "w", 1, "parallel integration workers")
	Flux2DCmd.Flags().Bool("delaunay", false, "triangulate the node cloud instead of using the structured split")
}

func Run2DFlux(n, workers int, delaunay bool) {
	var (
		msh *mesh.Mesh
	)
	if delaunay {
		pts := make([][2]float64, 0, (n+1)*(n+1))
		h := 1. / float64(n)
		for j := 0; j <= n; j++ {
			for i := 0; i <= n; i++ {
				pts = append(pts, [2]float64{float64(i) * h, float64(j) * h})
			}
		}
		msh = mesh.DelaunayMesh2D(pts, func(p1, p2 []float64) int {
			switch {
			case math.Abs(p1[0]) < 1.e-12 && math.Abs(p2[0]) < 1.e-12:
				return 1
			case math.Abs(p1[0]-1) < 1.e-12 && math.Abs(p2[0]-1) < 1.e-12:
				return 2
			case math.Abs(p1[1]) < 1.e-12 && math.Abs(p2[1]) < 1.e-12:
				return 3
			default:
				return 4
			}
		})
	} else {
		msh = mesh.UnitSquareMesh2D(n)
	}
	p := defaultParameters(2)
	p.GridSize = n
	p.Workers = workers
	phys := fvm.Physics{
		Flux:    func(f, uk, ul []float64) { f[0] = uk[0] - ul[0] },
		Storage: func(f, u []float64) { f[0] = u[0] },
	}
	sys := fvm.NewSystem(msh, phys, 1)
	sys.EnableSpecies(0, []int{1})
	reportFunctionals(sys, msh, p)
	fmt.Printf("analytic net flux = %8.5f\n", 1.)
}
