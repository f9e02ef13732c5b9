package rewire_test

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/befsim/internal/foodweb"
	"github.com/san-kum/befsim/internal/params"
	"github.com/san-kum/befsim/internal/rewire"
)

// linkedToExtinct reports any link touching an extinct species.
func linkedToExtinct(net *params.Network, extinct []bool) bool {
	for i, row := range net.A {
		for j, v := range row {
			if v == 1 && (extinct[i] || extinct[j]) {
				return true
			}
		}
	}
	return false
}

var _ = Describe("Gilljam", func() {
	var (
		p      *params.Parameters
		engine *rewire.Engine
	)

	BeforeEach(func() {
		p = mustBuild(fiveSpecies, func(o *params.Options) {
			o.RewireMethod = params.RewireGilljam
			o.Gilljam.Cost = 0.5
		})
		engine = rewire.NewEngine(p, rand.New(rand.NewSource(7)))
	})

	It("replaces a lost prey with the most similar survivor", func() {
		b := alive(5)
		b[3] = 0
		out := engine.Checkpoint(1, b, p.InitialNetwork())

		Expect(out.Rewired).To(BeTrue())
		Expect(out.Network.Diet(0)).To(Equal([]int{2, 4}))
		Expect(out.Network.Diet(1)).To(Equal([]int{2, 4}))
		Expect(out.Network.Diet(2)).To(Equal([]int{4}), "unaffected consumer keeps its row")
		Expect(linkedToExtinct(out.Network, engine.Extinct())).To(BeFalse())
	})

	It("charges the cost on novel links only", func() {
		b := alive(5)
		b[3] = 0
		out := engine.Checkpoint(1, b, p.InitialNetwork())

		Expect(out.Network.Novel[0][4]).To(BeTrue())
		Expect(out.Network.Efficiency[0][4]).To(BeNumerically("~", 0.45*0.5, 1e-12))
		Expect(out.Network.Novel[0][2]).To(BeFalse())
		Expect(out.Network.Efficiency[0][2]).To(BeNumerically("~", 0.85, 1e-12))
		Expect(out.Network.Preference[0][2]).To(BeNumerically("~", 0.5, 1e-12))
	})

	It("gives the favoured prey most of the preference as a specialist", func() {
		p = mustBuild(fiveSpecies, func(o *params.Options) {
			o.RewireMethod = params.RewireGilljam
			o.Gilljam.PreferenceMethod = "specialist"
		})
		engine = rewire.NewEngine(p, rand.New(rand.NewSource(7)))
		b := alive(5)
		b[3] = 0
		out := engine.Checkpoint(1, b, p.InitialNetwork())

		Expect(out.Network.Preference[0][2]).To(BeNumerically("~", 0.9, 1e-12))
		Expect(out.Network.Preference[0][4]).To(BeNumerically("~", 0.1, 1e-12))
	})

	It("scores similarity over prey and predators", func() {
		Expect(rewire.Similarity(fiveSpecies, 3, 4)).To(BeNumerically("~", 1.0/3, 1e-12))
		Expect(rewire.Similarity(fiveSpecies, 3, 0)).To(BeZero())
		Expect(rewire.Similarity(fiveSpecies, 0, 0)).To(BeNumerically("~", 1, 1e-12))
	})
})

var _ = Describe("ADBM", func() {
	var p *params.Parameters

	BeforeEach(func() {
		p = mustBuild(fiveSpecies, func(o *params.Options) {
			o.RewireMethod = params.RewireADBM
			o.BodyMass = []float64{100, 50, 10, 1, 2}
		})
	})

	profit := func(i, j int) float64 {
		m := p.BodyMass
		return m[j] * (0.401 - m[j]/m[i])
	}

	It("picks a prefix of the profitability order among survivors", func() {
		b := alive(5)
		b[3] = 0
		engine := rewire.NewEngine(p, nil)
		out := engine.Checkpoint(1, b, p.InitialNetwork())

		Expect(out.Rewired).To(BeTrue())
		for _, i := range []int{0, 1} {
			diet := out.Network.Diet(i)
			Expect(diet).NotTo(BeEmpty())
			Expect(diet).NotTo(ContainElement(3))
			Expect(diet).NotTo(ContainElement(i))

			minIn := 1e300
			for _, j := range diet {
				Expect(p.BodyMass[j] / p.BodyMass[i]).To(BeNumerically("<", 0.401))
				if v := profit(i, j); v < minIn {
					minIn = v
				}
			}
			for j := range p.BodyMass {
				if j == i || j == 3 || out.Network.A[i][j] == 1 || p.BodyMass[j]/p.BodyMass[i] >= 0.401 {
					continue
				}
				Expect(profit(i, j)).To(BeNumerically("<=", minIn), "excluded prey %d of %d", j, i)
			}
		}
		Expect(linkedToExtinct(out.Network, engine.Extinct())).To(BeFalse())
	})

	It("returns an empty diet when nothing fits the size ratio", func() {
		p = mustBuild(fiveSpecies, func(o *params.Options) {
			o.RewireMethod = params.RewireADBM
		})
		b := alive(5)
		b[3] = 0
		out := rewire.NewEngine(p, nil).Checkpoint(1, b, p.InitialNetwork())
		Expect(out.Network.Diet(0)).To(BeEmpty())
		Expect(out.Network.Diet(1)).To(BeEmpty())
	})
})

var _ = Describe("Staniczenko", func() {
	var web *foodweb.FoodWeb

	BeforeEach(func() {
		web = &foodweb.FoodWeb{
			A: foodweb.Matrix{
				{0, 0, 0, 0},
				{1, 0, 0, 0},
				{1, 0, 0, 0},
				{0, 1, 1, 0},
			},
			Niche:  []float64{0.1, 0.3, 0.5, 0.9},
			Centre: []float64{0, 0.1, 0.15, 0.35},
			Range:  []float64{0, 0.02, 0.1, 0.4},
		}
	})

	build := func() *params.Parameters {
		opts := params.DefaultOptions()
		opts.RewireMethod = params.RewireStaniczenko
		p, err := params.BuildWeb(web, opts)
		Expect(err).NotTo(HaveOccurred())
		return p
	}

	It("falls back to the survivor nearest the range centre", func() {
		p := build()
		b := alive(4)
		b[0] = 0
		out := rewire.NewEngine(p, nil).Checkpoint(1, b, p.InitialNetwork())

		Expect(out.Network.Diet(1)).To(Equal([]int{2}))
		Expect(out.Network.Diet(2)).To(Equal([]int{1}))
		Expect(out.Network.Diet(3)).To(Equal([]int{1, 2}))
		Expect(out.Network.Novel[1][2]).To(BeTrue())
	})

	It("keeps surviving species inside the range", func() {
		p := build()
		b := alive(4)
		b[1] = 0
		out := rewire.NewEngine(p, nil).Checkpoint(1, b, p.InitialNetwork())

		Expect(out.Network.Diet(3)).To(Equal([]int{2}))
		Expect(out.Network.Preference[3][2]).To(BeNumerically("~", 1, 1e-12))
	})

	It("keeps a cannibalistic link of a rewired consumer", func() {
		web.A[3][3] = 1
		p := build()
		b := alive(4)
		b[1] = 0
		out := rewire.NewEngine(p, nil).Checkpoint(1, b, p.InitialNetwork())

		Expect(out.Network.Diet(3)).To(Equal([]int{2, 3}))
		Expect(out.Network.Novel[3][3]).To(BeFalse())
		Expect(out.Network.Preference[3][3]).To(BeNumerically("~", 0.5, 1e-12))
	})

	It("leaves a consumer linkless when nothing survives", func() {
		p := build()
		b := []float64{0, 0, 0, 0.5}
		engine := rewire.NewEngine(p, nil)
		out := engine.Checkpoint(1, b, p.InitialNetwork())

		Expect(out.Rewired).To(BeTrue())
		Expect(out.Network.Diet(3)).To(BeEmpty())
		Expect(engine.AllExtinct()).To(BeFalse())
	})
})
