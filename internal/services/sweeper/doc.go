// Package sweeper runs the periodic maintenance sweep: reclassify every
// stored vehicle's schedule against today's date and odometer, refresh the
// forecast through the planner, merge, persist, and publish reminder events.
package sweeper
