// Package sim provides the generation-stepping engine shared by every
// population model.
//
// A [Model] maps the state of one generation to the next. The [Simulator]
// drives a model for a fixed number of generations, feeding each state to
// registered [Metric] and [Observer] hooks, and stops early when a model
// implementing [Absorber] reaches fixation or loss and the run asks for it.
//
//	s := sim.New(models.NewDrift(100))
//	res, err := s.Run(ctx, sim.State{0.5}, sim.Config{Generations: 30, Seed: 7})
//
// [Ensemble] runs independent replicate lines concurrently, one seed per line.
package sim
