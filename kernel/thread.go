package kernel

import "fmt"

// Task is the body of a thread. Run normally loops forever; a thread whose
// Run returns is killed.
type Task interface {
	Run()
}

// TaskFunc adapts a function to Task.
type TaskFunc func()

func (f TaskFunc) Run() { f() }

// AddResult describes the outcome of AddThreadResult.
type AddResult uint8

const (
	AddOK AddResult = iota
	AddErrPoolFull
	AddErrBadPriority
	AddErrNilTask
)

func (r AddResult) String() string {
	switch r {
	case AddOK:
		return "ok"
	case AddErrPoolFull:
		return "thread pool full"
	case AddErrBadPriority:
		return "priority out of range"
	case AddErrNilTask:
		return "nil task"
	default:
		return "unknown"
	}
}

// AddThread adds a thread at the given priority (0 is highest) and reports
// whether it was created.
func (k *Kernel) AddThread(task Task, priority uint8) bool {
	_, res := k.AddThreadResult("", task, priority)
	return res == AddOK
}

// AddThreadResult adds a named thread. The thread is immediately ready. On
// failure nothing changes.
func (k *Kernel) AddThreadResult(name string, task Task, priority uint8) (ThreadID, AddResult) {
	if task == nil {
		return 0, AddErrNilTask
	}
	if priority >= PriorityLevels {
		k.logf("add thread name=%s priority=%d: %s", name, priority, AddErrBadPriority)
		return 0, AddErrBadPriority
	}

	cs := k.enter()
	defer cs.exit()

	i, ok := k.alloc()
	if !ok {
		k.logf("add thread name=%s: %s", name, AddErrPoolFull)
		return 0, AddErrPoolFull
	}
	if name == "" {
		name = fmt.Sprintf("thread%d", i)
	}

	t := &k.tcbs[i]
	t.status = statusRunnable
	t.gen++
	t.name = name
	t.priority = priority
	t.sleep = 0
	t.blockedOn = nil
	t.nextBlocked = none
	t.task = task
	t.ctx = k.core.NewContext(k.entry(ThreadID(i), task))

	k.linkRun(i)
	k.ready.insert(i)
	if k.run == none {
		k.run = i
	}
	k.logf("add thread id=%d name=%s priority=%d", i, name, priority)
	return ThreadID(i), AddOK
}

// entry wraps a task so that a normal return kills the thread and a panic
// becomes a fault.
func (k *Kernel) entry(id ThreadID, task Task) func() {
	return func() {
		defer func() {
			if r := recover(); r != nil {
				k.trap(Fault{Kind: FaultThreadPanic, Thread: id, Value: r})
			}
		}()
		task.Run()
		k.logf("thread id=%d returned", id)
		k.Kill()
	}
}

// ID returns the running thread's id.
func (k *Kernel) ID() ThreadID {
	return ThreadID(k.run)
}

// Kill ends the running thread and frees its slot. It does not return.
func (k *Kernel) Kill() {
	state := k.core.DisableInterrupts()

	i := k.run
	t := &k.tcbs[i]
	k.ready.remove(i)
	k.unlinkRun(i)

	k.dying = t.ctx
	t.status = statusFree
	t.ctx = nil
	t.task = nil
	t.sleep = 0
	t.blockedOn = nil
	k.logf("kill thread id=%d name=%s", i, t.name)

	k.suspend()
	k.core.RestoreInterrupts(state)

	k.trap(Fault{Kind: FaultKillReturned, Thread: ThreadID(i)})
}

// WaitForInterrupt idles the core until the next interrupt and services it.
// Idle threads call it in a loop.
func (k *Kernel) WaitForInterrupt() {
	k.core.WaitForInterrupt()
}
