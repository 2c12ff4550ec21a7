// Package async runs named tasks over a small worker pool and collects
// their results by name.
package async

import (
	"context"
	"sync"
)

type Task struct {
	Name string
	Run  func() (any, error)
}

type Result struct {
	Name string
	Data any
	Err  error
}

type Pool struct {
	workers int
}

func NewPool(workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{workers: workers}
}

// Execute runs all tasks and returns their results keyed by task name.
// A cancelled context stops work in flight; skipped tasks carry the
// context error.
func (p *Pool) Execute(ctx context.Context, tasks []Task) map[string]Result {
	queue := make(chan Task, len(tasks))
	out := make(chan Result, len(tasks))

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range queue {
				if ctx.Err() != nil {
					out <- Result{Name: task.Name, Err: ctx.Err()}
					continue
				}
				data, err := task.Run()
				out <- Result{Name: task.Name, Data: data, Err: err}
			}
		}()
	}

	for _, task := range tasks {
		queue <- task
	}
	close(queue)
	wg.Wait()
	close(out)

	results := make(map[string]Result, len(tasks))
	for r := range out {
		results[r.Name] = r
	}
	return results
}
