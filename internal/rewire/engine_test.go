package rewire_test

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/befsim/internal/foodweb"
	"github.com/san-kum/befsim/internal/params"
	"github.com/san-kum/befsim/internal/rewire"
)

// 0 eats 2,3; 1 eats 3,4; 2 eats 4; 3 and 4 are producers.
var fiveSpecies = foodweb.Matrix{
	{0, 0, 1, 1, 0},
	{0, 0, 0, 1, 1},
	{0, 0, 0, 0, 1},
	{0, 0, 0, 0, 0},
	{0, 0, 0, 0, 0},
}

func mustBuild(a foodweb.Matrix, mod func(*params.Options)) *params.Parameters {
	opts := params.DefaultOptions()
	if mod != nil {
		mod(&opts)
	}
	p, err := params.Build(a, opts)
	Expect(err).NotTo(HaveOccurred())
	return p
}

func alive(s int) []float64 {
	b := make([]float64, s)
	for i := range b {
		b[i] = 0.5
	}
	return b
}

type recorder struct {
	events []rewire.Event
}

func (r *recorder) Name() params.RewireMethod { return "recorder" }

func (r *recorder) Rewire(_ *params.Network, ev rewire.Event) { r.events = append(r.events, ev) }

var _ = Describe("Engine", func() {
	var (
		p      *params.Parameters
		net    *params.Network
		engine *rewire.Engine
		phases []rewire.Phase
	)

	BeforeEach(func() {
		p = mustBuild(fiveSpecies, nil)
		net = p.InitialNetwork()
		phases = nil
		engine = rewire.NewEngine(p, rand.New(rand.NewSource(1)),
			rewire.WithPhaseHook(func(_, to rewire.Phase) { phases = append(phases, to) }))
	})

	It("passes through CheckPending back to Active without extinctions", func() {
		out := engine.Checkpoint(0, alive(5), net)

		Expect(phases).To(Equal([]rewire.Phase{rewire.CheckPending, rewire.Active}))
		Expect(engine.Phase()).To(Equal(rewire.Active))
		Expect(out.Newly).To(BeEmpty())
		Expect(out.Rewired).To(BeFalse())
		Expect(out.Network.A).To(Equal(net.A))

		out.Network.ClearRow(0)
		Expect(net.Diet(0)).To(Equal([]int{2, 3}))
	})

	It("marks species at or below the threshold extinct and cuts their links", func() {
		b := alive(5)
		b[3] = 1e-9
		b[2] = -0.1
		out := engine.Checkpoint(2.5, b, net)

		Expect(out.Newly).To(ConsistOf(2, 3))
		Expect(out.Biomass[2]).To(BeZero())
		Expect(out.Biomass[3]).To(BeZero())
		Expect(out.Network.Diet(0)).To(BeEmpty())
		Expect(out.Network.Diet(1)).To(Equal([]int{4}))
		Expect(out.Network.Diet(2)).To(BeEmpty())
		Expect(engine.Extinctions()).To(ConsistOf(
			rewire.Extinction{Species: 2, Time: 2.5},
			rewire.Extinction{Species: 3, Time: 2.5},
		))
		Expect(out.Rewired).To(BeFalse())
		Expect(engine.Rewirings()).To(BeZero())
	})

	It("keeps extinction absorbing", func() {
		b := alive(5)
		b[4] = 0
		first := engine.Checkpoint(0, b, net)

		out := engine.Checkpoint(1, alive(5), first.Network)
		Expect(out.Newly).To(BeEmpty())
		Expect(out.Biomass[4]).To(BeZero())
		Expect(engine.Extinct()).To(Equal([]bool{false, false, false, false, true}))
		Expect(engine.Extinctions()).To(HaveLen(1))
	})

	It("reports collapse once every species is extinct", func() {
		Expect(engine.AllExtinct()).To(BeFalse())
		engine.Checkpoint(0, make([]float64, 5), net)
		Expect(engine.AllExtinct()).To(BeTrue())
	})

	It("hands only affected consumers to the method", func() {
		rec := &recorder{}
		engine = rewire.NewEngine(p, nil, rewire.WithMethod(rec),
			rewire.WithPhaseHook(func(_, to rewire.Phase) { phases = append(phases, to) }))

		b := alive(5)
		b[3] = 0
		out := engine.Checkpoint(4, b, net)

		Expect(out.Rewired).To(BeTrue())
		Expect(phases).To(Equal([]rewire.Phase{rewire.CheckPending, rewire.Rewiring, rewire.Active}))
		Expect(rec.events).To(HaveLen(1))
		ev := rec.events[0]
		Expect(ev.Affected).To(Equal([]int{0, 1}))
		Expect(ev.Newly).To(Equal([]int{3}))
		Expect(ev.Before.Diet(0)).To(Equal([]int{2, 3}))
		Expect(ev.Extinct[3]).To(BeTrue())
		Expect(engine.Rewirings()).To(Equal(1))
	})

	It("does not call the method when no consumer lost prey", func() {
		rec := &recorder{}
		engine = rewire.NewEngine(p, nil, rewire.WithMethod(rec))
		b := alive(5)
		b[0] = 0
		out := engine.Checkpoint(0, b, net)
		Expect(out.Newly).To(Equal([]int{0}))
		Expect(out.Rewired).To(BeFalse())
		Expect(rec.events).To(BeEmpty())
	})
})

var _ = Describe("Phase", func() {
	It("has readable names", func() {
		Expect(rewire.Active.String()).To(Equal("active"))
		Expect(rewire.CheckPending.String()).To(Equal("check-pending"))
		Expect(rewire.Rewiring.String()).To(Equal("rewiring"))
	})
})
