package effort

import "strings"

type RenderingContext string

const (
	RenderingDefault RenderingContext = "default"
	RenderingMobile  RenderingContext = "mobile"
)

func ParseRenderingContext(raw string) RenderingContext {
	if RenderingContext(strings.ToLower(strings.TrimSpace(raw))) == RenderingMobile {
		return RenderingMobile
	}
	return RenderingDefault
}

const (
	DefaultReadingWordsPerMinute = 265
	DefaultProblemSeconds        = 120
)

type Config struct {
	ReadingWordsPerMinute int
	ProblemSeconds        int
	RenderingContext      RenderingContext
}

func DefaultConfig() Config {
	return Config{
		ReadingWordsPerMinute: DefaultReadingWordsPerMinute,
		ProblemSeconds:        DefaultProblemSeconds,
		RenderingContext:      RenderingDefault,
	}
}

func (c Config) withDefaults() Config {
	if c.ReadingWordsPerMinute <= 0 {
		c.ReadingWordsPerMinute = DefaultReadingWordsPerMinute
	}
	if c.ProblemSeconds <= 0 {
		c.ProblemSeconds = DefaultProblemSeconds
	}
	if c.RenderingContext != RenderingMobile {
		c.RenderingContext = RenderingDefault
	}
	return c
}
