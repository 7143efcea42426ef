package cbmcore

import (
	"github.com/sirupsen/logrus"
)

// StepLogger wraps Step with progress logging, reporting iteration
// progress through a logrus.FieldLogger so CLI, test, and library
// callers can each wire their own handler/formatter.
type StepLogger struct {
	Log   logrus.FieldLogger
	Every int // log only when year is a multiple of Every; 0 or 1 logs every year
}

// Wrap returns a function with the same signature as Engine.Step that
// logs before delegating.
func (sl *StepLogger) Wrap(e *Engine, year int) func(params *StepParameters, landClassTransition LandClassTransitionFunc, hook PreStepHook) (*StepResult, error) {
	return func(params *StepParameters, landClassTransition LandClassTransitionFunc, hook PreStepHook) (*StepResult, error) {
		if sl.Log != nil && (sl.Every <= 1 || year%sl.Every == 0) {
			sl.Log.WithFields(logrus.Fields{
				"year":   year,
				"stands": e.State.Len(),
			}).Debug("cbmcore: running annual step")
		}
		result, err := e.Step(params, landClassTransition, hook)
		if err != nil && sl.Log != nil {
			sl.Log.WithError(err).WithField("year", year).Error("cbmcore: annual step failed")
		}
		return result, err
	}
}

// LogSpinupReport emits a summary line for a finished spinup run,
// warning when any stands failed to converge within their rotation
// budget: a ConvergenceWarning condition rather than a hard error.
func LogSpinupReport(log logrus.FieldLogger, report *SpinupReport) {
	if log == nil {
		return
	}
	fields := logrus.Fields{
		"stands":        len(report.Converged),
		"non_converged": report.NonConvergedCount,
	}
	if report.NonConvergedCount > 0 {
		log.WithFields(fields).Warn("cbmcore: spinup finished with non-converged stands")
		return
	}
	log.WithFields(fields).Info("cbmcore: spinup converged for all stands")
}
