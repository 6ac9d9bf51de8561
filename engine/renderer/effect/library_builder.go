package effect

// LibraryBuilderOption is a functional option used to configure a Library during construction.
type LibraryBuilderOption func(*library)

// WithCompileFunc replaces the WGSL compiler. The default is naga.Compile.
//
// Parameters:
//   - fn: the compiler to use
//
// Returns:
//   - LibraryBuilderOption: a function that sets the compiler for this library
func WithCompileFunc(fn CompileFunc) LibraryBuilderOption {
	return func(l *library) {
		l.compile = fn
	}
}

// WithScheduler replaces the background worker pool with a custom scheduler.
//
// Parameters:
//   - s: the scheduler used to run compilation jobs
//
// Returns:
//   - LibraryBuilderOption: a function that sets the scheduler for this library
func WithScheduler(s Scheduler) LibraryBuilderOption {
	return func(l *library) {
		l.scheduler = s
	}
}

// WithSynchronousCompilation compiles on the calling goroutine inside Load and Reload.
func WithSynchronousCompilation() LibraryBuilderOption {
	return func(l *library) {
		l.scheduler = func(job func()) { job() }
	}
}

// WithCompileWorkers sets the maximum number of background compilation workers.
func WithCompileWorkers(n int) LibraryBuilderOption {
	return func(l *library) {
		if n > 0 {
			l.workers = n
		}
	}
}
