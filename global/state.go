package global

import (
	"fmt"
	"sync"
)

const (
	instrumentationName    = "github.com/ourritual/sdk-go"
	instrumentationVersion = "0.1.0"
)

type state struct {
	// base required options
	svcName        string
	svcRelease     string
	svcEnvironment string
}

var (
	globalState     = state{}
	globalStateLock = &sync.RWMutex{}
)

func NewState(name, release, environment string) error {
	globalStateLock.Lock()
	defer globalStateLock.Unlock()

	if globalState.svcName != "" {
		return fmt.Errorf("already initialized global state")
	}

	globalState = state{
		svcName:        name,
		svcRelease:     release,
		svcEnvironment: environment,
	}
	return nil
}

func ServiceName() string {
	globalStateLock.RLock()
	defer globalStateLock.RUnlock()
	return globalState.svcName
}

func ServiceRelease() string {
	globalStateLock.RLock()
	defer globalStateLock.RUnlock()
	return globalState.svcRelease
}

func ServiceEnvironment() string {
	globalStateLock.RLock()
	defer globalStateLock.RUnlock()
	return globalState.svcEnvironment
}

func InstrumentationName() string {
	return instrumentationName
}

func InstrumentationVersion() string {
	return instrumentationVersion
}

func UserAgent() string {
	return instrumentationName + " " + instrumentationVersion
}
