package serving

import (
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/hammamikhairi/ottokitchen/internal/domain"
	"github.com/hammamikhairi/ottokitchen/internal/logger"
	"github.com/hammamikhairi/ottokitchen/internal/mocks"
)

type eventLog struct {
	events []domain.Event
}

func (l *eventLog) Publish(e domain.Event) { l.events = append(l.events, e) }

func newDish(i int) *domain.Dish {
	return &domain.Dish{
		ID:          fmt.Sprintf("dish-%d", i),
		Name:        fmt.Sprintf("Dish %d", i),
		Score:       100,
		SessionID:   fmt.Sprintf("sess-%d", i),
		Status:      domain.DishReady,
		Interactive: true,
	}
}

var _ = Describe("Allocator", func() {
	var (
		mockCtrl *gomock.Controller
		score    *mocks.MockScoreSink
		events   *eventLog
		a        *Allocator
	)

	// arrive moves every travelling dish to its slot.
	arrive := func() {
		a.Tick(time.Second)
	}

	fill := func(n int) []*domain.Dish {
		dishes := make([]*domain.Dish, n)
		for i := range dishes {
			dishes[i] = newDish(i)
			_, err := a.PlaceDish(dishes[i])
			Expect(err).NotTo(HaveOccurred())
		}
		arrive()
		return dishes
	}

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		score = mocks.NewMockScoreSink(mockCtrl)
		events = &eventLog{}
		a = New(score, logger.New(logger.LevelOff, nil),
			WithOrigin(domain.Vec2{Y: 3}),
			WithEvents(events),
		)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should lay out five default slots around the origin", func() {
		slots := a.Slots()
		Expect(slots).To(HaveLen(5))
		Expect(slots[0].Position).To(Equal(domain.Vec2{X: -2, Y: 3}))
		Expect(slots[4].Position).To(Equal(domain.Vec2{X: 2, Y: 3}))
		Expect(a.FreeCount()).To(Equal(5))
		Expect(a.OccupiedCount()).To(Equal(0))
		Expect(a.HasFreeSlot()).To(BeTrue())
	})

	It("should use configured positions", func() {
		a = New(score, logger.New(logger.LevelOff, nil),
			WithPositions([]domain.Vec2{{X: 1}, {X: 2}}))
		Expect(a.Capacity()).To(Equal(2))
	})

	It("should place first-fit and commit only on arrival", func() {
		d := newDish(0)
		d.Position = domain.Vec2{X: 10, Y: 3}

		ref, err := a.PlaceDish(d)
		Expect(err).NotTo(HaveOccurred())
		Expect(ref.Index).To(Equal(0))
		Expect(d.Status).To(Equal(domain.DishInFlight))
		Expect(d.Interactive).To(BeFalse())
		Expect(a.OccupiedCount()).To(Equal(0))
		Expect(a.FreeCount()).To(Equal(4))
		Expect(a.InFlightCount()).To(Equal(1))

		a.Tick(100 * time.Millisecond)
		Expect(d.Position.X).To(BeNumerically("<", 10))
		Expect(d.Position.X).To(BeNumerically(">", -2))
		Expect(a.OccupiedCount()).To(Equal(0))

		score.EXPECT().AddScore(100)
		a.Tick(time.Second)

		Expect(d.Status).To(Equal(domain.DishServed))
		Expect(d.Interactive).To(BeTrue())
		Expect(d.Position).To(Equal(ref.Position))
		Expect(a.OccupiedCount()).To(Equal(1))
		Expect(a.InFlightCount()).To(Equal(0))
		Expect(a.Slots()[0].Dish).To(BeIdenticalTo(d))
		Expect(events.events).To(ContainElement(domain.DishServedEvent{
			DishID: d.ID, Name: d.Name, Score: 100, Slot: ref,
		}))
	})

	It("should never hand the same slot to two travelling dishes", func() {
		r1, err := a.PlaceDish(newDish(1))
		Expect(err).NotTo(HaveOccurred())
		r2, err := a.PlaceDish(newDish(2))
		Expect(err).NotTo(HaveOccurred())
		Expect(r1.Index).To(Equal(0))
		Expect(r2.Index).To(Equal(1))
	})

	It("should fail with ErrNoFreeSlot and leave slots untouched when full", func() {
		score.EXPECT().AddScore(100).Times(5)
		fill(5)
		before := a.Slots()

		extra := newDish(9)
		_, err := a.PlaceDish(extra)
		Expect(err).To(MatchError(domain.ErrNoFreeSlot))
		Expect(a.Slots()).To(Equal(before))
		Expect(a.HasFreeSlot()).To(BeFalse())
		Expect(extra.Status).To(Equal(domain.DishReady))
		Expect(extra.Interactive).To(BeTrue())
	})

	It("should reuse the just-freed slot before any other", func() {
		score.EXPECT().AddScore(100).Times(6)
		dishes := fill(5)

		Expect(a.FreeSlot(dishes[2].ID)).To(Succeed())
		Expect(a.FreeCount()).To(Equal(1))
		Expect(a.OccupiedCount()).To(Equal(4))

		next := newDish(7)
		ref, err := a.PlaceDish(next)
		Expect(err).NotTo(HaveOccurred())
		Expect(ref.Index).To(Equal(2))
		arrive()
		Expect(a.Slots()[2].Dish).To(BeIdenticalTo(next))
	})

	It("should prefer the lowest freed index", func() {
		score.EXPECT().AddScore(100).Times(6)
		dishes := fill(5)
		Expect(a.FreeSlot(dishes[3].ID)).To(Succeed())
		Expect(a.FreeSlot(dishes[1].ID)).To(Succeed())

		ref, err := a.PlaceDish(newDish(8))
		Expect(err).NotTo(HaveOccurred())
		Expect(ref.Index).To(Equal(1))
		arrive()
	})

	It("should refuse to free unknown or travelling dishes", func() {
		d := newDish(1)
		_, err := a.PlaceDish(d)
		Expect(err).NotTo(HaveOccurred())

		Expect(a.FreeSlot(d.ID)).To(MatchError(domain.ErrDishInFlight))
		Expect(a.FreeSlot("nope")).To(MatchError(domain.ErrNotFound))
	})

	It("should refuse dishes that are not ready", func() {
		d := newDish(1)
		d.Status = domain.DishServed
		_, err := a.PlaceDish(d)
		Expect(err).To(MatchError(domain.ErrDishNotReady))

		d.Status = domain.DishInFlight
		_, err = a.PlaceDish(d)
		Expect(err).To(MatchError(domain.ErrDishInFlight))
	})

	It("should release the reserved slot when a placement is cancelled", func() {
		d := newDish(1)
		_, err := a.PlaceDish(d)
		Expect(err).NotTo(HaveOccurred())

		Expect(a.CancelDish(d.ID)).To(Succeed())
		Expect(d.Status).To(Equal(domain.DishCancelled))
		Expect(a.FreeCount()).To(Equal(5))
		Expect(a.InFlightCount()).To(Equal(0))
		Expect(a.CancelDish(d.ID)).To(MatchError(domain.ErrNotFound))

		// No score for a cancelled dish.
		arrive()
		Expect(a.OccupiedCount()).To(Equal(0))
	})

	It("should cancel only the placements of one session", func() {
		d1, d2 := newDish(1), newDish(2)
		_, _ = a.PlaceDish(d1)
		_, _ = a.PlaceDish(d2)

		Expect(a.CancelSession(d1.SessionID)).To(Equal(1))
		Expect(d1.Status).To(Equal(domain.DishCancelled))

		score.EXPECT().AddScore(100)
		arrive()
		Expect(d2.Status).To(Equal(domain.DishServed))
		Expect(a.Slots()[1].Dish).To(BeIdenticalTo(d2))
		Expect(a.Slots()[0].Occupied()).To(BeFalse())
	})

	It("should empty everything on reset", func() {
		score.EXPECT().AddScore(100).Times(2)
		fill(2)
		_, _ = a.PlaceDish(newDish(5))

		a.Reset()
		Expect(a.OccupiedCount()).To(Equal(0))
		Expect(a.InFlightCount()).To(Equal(0))
		Expect(a.FreeCount()).To(Equal(5))
	})

	It("should keep occupancy and dish reference consistent", func() {
		score.EXPECT().AddScore(gomock.Any()).AnyTimes()
		dishes := fill(3)
		Expect(a.FreeSlot(dishes[0].ID)).To(Succeed())

		for _, s := range a.Slots() {
			Expect(s.Occupied()).To(Equal(s.Dish != nil))
		}
	})
})
