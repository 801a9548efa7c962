package poolshell

import (
	"fmt"
	"sync"
	"time"

	"github.com/monopole/poolshell/linepump"
)

// Config bundles the construction parameters of §4.4, split out so it
// can also be loaded from YAML (see config.go).
type Config struct {
	MinPoolSize     int
	MaxPoolSize     int
	ReserveSize     int
	KeepAlive       time.Duration
	Verbose         bool
	PumpParams      linepump.Params
	StartupDeadline time.Duration
}

// Validate mirrors PSPPool's constructor argument checks.
func (c Config) Validate() error {
	if c.MinPoolSize < 0 {
		return wrapErr(ErrInvalidConfiguration, "MinPoolSize must be >= 0, got %d", c.MinPoolSize)
	}
	if c.MaxPoolSize < 1 || c.MaxPoolSize < c.MinPoolSize {
		return wrapErr(ErrInvalidConfiguration,
			"MaxPoolSize must be >= 1 and >= MinPoolSize, got MaxPoolSize=%d MinPoolSize=%d",
			c.MaxPoolSize, c.MinPoolSize)
	}
	if c.ReserveSize < 0 || c.ReserveSize > c.MaxPoolSize {
		return wrapErr(ErrInvalidConfiguration,
			"ReserveSize must be between 0 and MaxPoolSize, got %d", c.ReserveSize)
	}
	return nil
}

// Pool maintains the set of shells, sizing policy, idle culling, and
// the dispatch queue described in §4.4. Grounded on PSPPool, with the
// Java semaphore/ThreadPoolExecutor machinery replaced by goroutines,
// channels, and a plain mutex over the pool's own indices.
type Pool struct {
	factory ProcessManagerFactory
	cfg     Config
	logger  Logger
	metrics *metricSet

	mu            sync.Mutex
	allShells     map[string]*shellImpl
	queue         []*internalSubmission
	executing     int
	closing       bool
	pendingSpawns int

	wake chan struct{}

	shutdownOnce sync.Once
	dispatchDone chan struct{}
}

// New constructs a pool per §4.4: it validates cfg, spawns
// max(MinPoolSize, ReserveSize) shells, and blocks until they all
// reach READY before returning. If any of them fails to spawn or
// misses cfg.StartupDeadline, New shuts the pool down and returns that
// error. logger may be nil.
func New(factory ProcessManagerFactory, cfg Config, logger Logger) (*Pool, error) {
	if factory == nil {
		return nil, wrapErr(ErrInvalidConfiguration, "process manager factory cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = noopLogger{}
	}

	p := &Pool{
		factory:      factory,
		cfg:          cfg,
		logger:       logger,
		metrics:      newMetricSet(),
		allShells:    make(map[string]*shellImpl),
		wake:         make(chan struct{}, 1),
		dispatchDone: make(chan struct{}),
	}

	initialSize := cfg.MinPoolSize
	if cfg.ReserveSize > initialSize {
		initialSize = cfg.ReserveSize
	}

	var (
		wg       sync.WaitGroup
		errMu    sync.Mutex
		firstErr error
	)
	for i := 0; i < initialSize; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := p.spawnShellAndAwaitReady(cfg.StartupDeadline); err != nil {
				p.logger.Printf("pool: initial shell failed to start: %v", err)
				errMu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				errMu.Unlock()
			}
		}()
	}
	wg.Wait()
	if firstErr != nil {
		p.Shutdown()
		return nil, firstErr
	}

	go p.dispatch()
	return p, nil
}

// Submit enqueues sub for execution on any available shell and
// returns a future for its outcome. It returns ErrPoolClosed after
// Shutdown.
func (p *Pool) Submit(sub Submission) (*SubmissionFuture, error) {
	if sub == nil {
		return nil, wrapErr(ErrInvalidConfiguration, "submission cannot be nil")
	}
	if len(sub.Commands()) == 0 {
		return nil, wrapErr(ErrInvalidConfiguration, "submission must contain at least one command")
	}

	internal := newInternalSubmission(sub, time.Now())

	p.mu.Lock()
	if p.closing {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	p.queue = append(p.queue, internal)
	p.metrics.queueDepth.Set(float64(len(p.queue)))
	p.mu.Unlock()

	p.metrics.submitted.Inc()
	p.signalWake()
	return &SubmissionFuture{sub: internal}, nil
}

// Shutdown marks the pool closed and terminates every shell that is
// READY or BUSY at that moment. A shell still STARTING is not
// terminated by Shutdown. It is idempotent.
func (p *Pool) Shutdown() {
	p.shutdownOnce.Do(func() {
		p.mu.Lock()
		p.closing = true
		shells := make([]*shellImpl, 0, len(p.allShells))
		for _, sh := range p.allShells {
			shells = append(shells, sh)
		}
		p.mu.Unlock()

		p.signalWake()
		close(p.dispatchDone)

		for _, sh := range shells {
			sh.beginTermination()
		}
	})
}

// Stats is a point-in-time snapshot of pool occupancy, the
// supplemented counterpart to PSPPool's private getPoolStats log
// line.
type Stats struct {
	AllShells     int
	ReadyShells   int
	Executing     int
	QueueDepth    int
	ReserveTarget int
}

// Stats reports a snapshot of the pool's current occupancy.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	all := make([]*shellImpl, 0, len(p.allShells))
	for _, sh := range p.allShells {
		all = append(all, sh)
	}
	st := Stats{
		AllShells:     len(all),
		Executing:     p.executing,
		QueueDepth:    len(p.queue),
		ReserveTarget: p.cfg.ReserveSize,
	}
	p.mu.Unlock()

	for _, sh := range all {
		if sh.State() == StateReady {
			st.ReadyShells++
		}
	}
	return st
}

// String renders Stats as a single log line, the supplemented
// counterpart to PSPPool's private getPoolStats.
func (s Stats) String() string {
	return fmt.Sprintf(
		"pool stats: all=%d ready=%d executing=%d queued=%d reserve=%d",
		s.AllShells, s.ReadyShells, s.Executing, s.QueueDepth, s.ReserveTarget)
}

func (p *Pool) signalWake() {
	p.refreshReadyGauge()
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// refreshReadyGauge recomputes the ready-shell count and publishes it
// to Prometheus. It piggybacks on every call to signalWake, so a
// readiness change that does not go through signalWake (a dispatch
// taking a shell from READY to BUSY, an idle timeout) shows up in the
// gauge only at the next wake.
func (p *Pool) refreshReadyGauge() {
	ready := 0
	for _, sh := range p.allShellSnapshot() {
		if sh.State() == StateReady {
			ready++
		}
	}
	p.metrics.readyGauge.Set(float64(ready))
}

// dispatch is the single dispatcher goroutine of §4.4: it waits for a
// non-empty queue, attempts to hand the head submission to a ready
// shell, and otherwise re-evaluates pool sizing.
func (p *Pool) dispatch() {
	for {
		sub := p.dequeueHeadIfAny()
		if sub == nil {
			select {
			case <-p.wake:
				continue
			case <-p.dispatchDone:
				return
			}
		}

		accepted := p.tryAssign(sub)
		if !accepted {
			// No ready shell took it; put it back at the head and
			// make sure sizing has a chance to catch up before
			// trying again.
			p.requeueHead(sub)
			p.evaluateSizing()
			select {
			case <-p.wake:
			case <-time.After(50 * time.Millisecond):
			case <-p.dispatchDone:
				return
			}
			continue
		}

		p.evaluateSizing()

		select {
		case <-p.dispatchDone:
			return
		default:
		}
	}
}

func (p *Pool) dequeueHeadIfAny() *internalSubmission {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.queue) == 0 {
		return nil
	}
	sub := p.queue[0]
	p.queue = p.queue[1:]
	p.metrics.queueDepth.Set(float64(len(p.queue)))
	return sub
}

func (p *Pool) requeueHead(sub *internalSubmission) {
	p.mu.Lock()
	p.queue = append([]*internalSubmission{sub}, p.queue...)
	p.metrics.queueDepth.Set(float64(len(p.queue)))
	p.mu.Unlock()
}

// tryAssign implements the dispatcher's acceptance rendezvous (§4.4,
// §9): it snapshots allShells, exactly as PSPPool.mainLoop iterates
// activeShells filtering by isReady(), and offers sub to each
// ready-looking shell via tryAcquire, which atomically secures
// exclusive ownership or reports failure with no side effect -- so a
// shell that turned non-ready between the snapshot and the attempt
// simply forwards the opportunity to the next one. The winning shell
// then runs the submission to completion in its own goroutine,
// decoupled from the dispatch loop.
func (p *Pool) tryAssign(sub *internalSubmission) bool {
	if sub.cancelledBeforeStart() {
		sub.markFinished(time.Now(), ErrCancelled)
		p.metrics.failed.Inc()
		return true
	}

	for _, sh := range p.allShellSnapshot() {
		if sh.State() != StateReady {
			continue
		}
		if !sh.tryAcquire() {
			continue
		}
		sub.markSubmitted(time.Now())
		p.onSubmissionStarted()
		go func(sh *shellImpl) {
			err := sh.runAccepted(sub)
			sub.markFinished(time.Now(), err)
			if err == nil {
				p.metrics.completed.Inc()
			} else {
				p.metrics.failed.Inc()
			}
			p.onSubmissionFinished()
			p.logger.Printf("pool: shell %s finished submission, err=%v", sh.ID(), err)
			p.signalWake()
		}(sh)
		return true
	}
	return false
}

func (p *Pool) allShellSnapshot() []*shellImpl {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*shellImpl, 0, len(p.allShells))
	for _, sh := range p.allShells {
		out = append(out, sh)
	}
	return out
}

func (p *Pool) onSubmissionStarted() {
	p.mu.Lock()
	p.executing++
	p.mu.Unlock()
	p.metrics.executing.Inc()
}

func (p *Pool) onSubmissionFinished() {
	p.mu.Lock()
	p.executing--
	p.mu.Unlock()
	p.metrics.executing.Dec()
}

// evaluateSizing implements the sizing formula of §4.4 and spawns
// shells until it holds or MaxPoolSize is reached. evaluateSizing runs
// concurrently from dispatch and from every dying shell's onShellDead,
// so the check against MaxPoolSize and the reservation of the slot it
// is about to fill must happen as one atomic step (reserveSpawnSlot);
// otherwise two callers can both observe room for one more shell
// before either of their spawns lands in allShells, overshooting I1's
// upper bound.
func (p *Pool) evaluateSizing() {
	for {
		if !p.reserveSpawnSlot() {
			return
		}
		if err := p.spawnShell(); err != nil {
			p.logger.Printf("pool: failed to spawn shell, retrying with backoff: %v", err)
			go func() {
				defer p.releaseSpawnSlot()
				if err := p.spawnShellWithRetry(); err != nil {
					p.logger.Printf("pool: giving up spawning replacement shell: %v", err)
				}
			}()
			return
		}
		p.releaseSpawnSlot()
	}
}

// reserveSpawnSlot evaluates the sizing formula against the live shell
// count plus any spawns already reserved but not yet registered in
// allShells, and reserves one more slot if growth is still needed.
// Holding p.mu across the whole check-and-reserve step is what makes
// two concurrent evaluateSizing callers see each other's in-flight
// growth instead of both reading the same stale count.
func (p *Pool) reserveSpawnSlot() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closing {
		return false
	}
	desired := p.executing + len(p.queue) + p.cfg.ReserveSize
	if p.cfg.MinPoolSize > desired {
		desired = p.cfg.MinPoolSize
	}
	if desired > p.cfg.MaxPoolSize {
		desired = p.cfg.MaxPoolSize
	}
	current := len(p.allShells) + p.pendingSpawns
	if current >= desired {
		return false
	}
	p.pendingSpawns++
	return true
}

func (p *Pool) releaseSpawnSlot() {
	p.mu.Lock()
	p.pendingSpawns--
	p.mu.Unlock()
}

// newShellAndManager builds one fresh shell and its pooledProcessManager
// wrapper, registering the shell in allShells before starting it so
// Stats/dispatch see it immediately.
func (p *Pool) newShellAndManager() (*shellImpl, *pooledProcessManager) {
	clientMgr := p.factory.NewProcessManager()
	pm := &pooledProcessManager{
		ProcessManager: clientMgr,
		onReady:        func(Shell) { p.signalWake() },
		onDead:         p.onShellDead,
	}
	sh := newShell(pm, p.cfg.KeepAlive, newPrefixLogger("shell: ", p.logger), p.cfg.PumpParams)
	pm.shell = sh

	p.mu.Lock()
	p.allShells[sh.ID()] = sh
	p.mu.Unlock()
	p.metrics.allShells.Inc()
	return sh, pm
}

func (p *Pool) discardFailedShell(sh *shellImpl) {
	p.mu.Lock()
	delete(p.allShells, sh.ID())
	p.mu.Unlock()
	p.metrics.allShells.Dec()
}

// spawnShell constructs, registers, and starts one new replacement or
// extra shell, wiring its manager through pooledProcessManager so the
// pool learns about readiness and termination (§4.3).
func (p *Pool) spawnShell() error {
	sh, _ := p.newShellAndManager()
	if err := sh.start(); err != nil {
		p.discardFailedShell(sh)
		return err
	}
	return nil
}

// spawnShellAndAwaitReady is used only for the pool's initial shells,
// which the constructor must block on (the startup latch of §4.4).
func (p *Pool) spawnShellAndAwaitReady(deadline time.Duration) error {
	sh, pm := p.newShellAndManager()

	ready := make(chan struct{})
	var closeOnce sync.Once
	pm.onReady = func(Shell) {
		closeOnce.Do(func() { close(ready) })
		p.signalWake()
	}

	if err := sh.start(); err != nil {
		p.discardFailedShell(sh)
		return err
	}

	if deadline <= 0 {
		<-ready
		return nil
	}
	select {
	case <-ready:
		return nil
	case <-time.After(deadline):
		return wrapErr(ErrProcessSpawnFailed, "shell %s: did not become ready within %s", sh.ID(), deadline)
	}
}

func (p *Pool) onShellDead(sh Shell, exitCode int) {
	impl, ok := sh.(*shellImpl)
	if !ok {
		return
	}
	p.mu.Lock()
	delete(p.allShells, impl.ID())
	closing := p.closing
	p.mu.Unlock()
	p.metrics.allShells.Dec()
	p.logger.Printf("pool: shell %s terminated, exitCode=%d", impl.ID(), exitCode)
	if !closing {
		p.evaluateSizing()
	}
}
