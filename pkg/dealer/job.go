package dealer

import "context"

type JobResult struct {
	Out any
	Err error
}

func NewJobResult(out any, err error) *JobResult {
	return &JobResult{
		Out: out,
		Err: err,
	}
}

type JobFunc func() *JobResult

type Job struct {
	f JobFunc
	// Buffered so a worker never blocks on a caller that stopped waiting
	resultch chan *JobResult
}

func (j *Job) Wait() *JobResult {
	return <-j.resultch
}

// WaitContext waits for job result or ctx cancellation. Job keeps running
// in the latter case, its result is discarded.
func (j *Job) WaitContext(ctx context.Context) *JobResult {
	select {
	case res := <-j.resultch:
		return res
	case <-ctx.Done():
		return NewJobResult(nil, ctx.Err())
	}
}

func newJob(f JobFunc) *Job {
	return &Job{
		f:        f,
		resultch: make(chan *JobResult, 1),
	}
}

func doneJob(res *JobResult) *Job {
	j := newJob(nil)
	j.resultch <- res
	return j
}
