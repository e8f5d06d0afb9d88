package game

import "github.com/pthm-cable/lavalamp/telemetry"

// UpdateHeadless advances the simulation by StepsPerUpdate fixed steps
// without touching raylib or the GPU.
func (g *Game) UpdateHeadless() {
	g.lamp.SetHeaterTemperature(g.controls.HeaterTemp)
	g.lamp.SetThreshold(g.controls.Threshold)

	for i := 0; i < g.stepsPerUpdate; i++ {
		g.perfCollector.StartTick()

		g.perfCollector.StartPhase(telemetry.PhaseSimulate)
		g.lamp.Update(DT)
		g.tick++

		g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
		g.flushTelemetry()

		g.perfCollector.EndTick()
	}
}
