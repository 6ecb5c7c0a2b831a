package config

const (
	defaultStateDir                 = "~/.local/share/seasonpass"
	defaultLogDir                   = "~/.local/share/seasonpass/logs"
	defaultStorageBackend           = "sqlite"
	defaultKeyPrefix                = "shams"
	defaultSchemaVersion            = "v1"
	defaultUnlockMode               = "timed"
	defaultGateWaitSeconds          = 60 * 60
	defaultGateHint                 = "If you want to open it now, ask the code to Manoj."
	defaultQuizPassScore            = 5
	defaultQuizAutoAdvanceMS        = 3000
	defaultPlaybackGraceSeconds     = 2.0
	defaultPlaybackEpsilon          = 0.02
	defaultPlaybackCompletionDelay  = 2000
	defaultPlaybackSkipSeconds      = 5.0
	defaultPlaybackTickMS           = 250
	defaultIntroDurationMS          = 2500
	defaultPrologueSkipAfterSeconds = 3.0
	defaultPrologueFadeMS           = 500
	defaultMenuPollMS               = 1000
	defaultLogFormat                = "console"
	defaultLogLevel                 = "info"
)

// Default returns a Config populated with repository defaults. Gates are
// filled in during normalization so a config file that declares its own
// [[unlock.gates]] replaces them entirely.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Storage: Storage{
			Backend:       defaultStorageBackend,
			KeyPrefix:     defaultKeyPrefix,
			SchemaVersion: defaultSchemaVersion,
		},
		Unlock: Unlock{
			Mode: defaultUnlockMode,
		},
		Quiz: Quiz{
			PassScore:     defaultQuizPassScore,
			AutoAdvanceMS: defaultQuizAutoAdvanceMS,
		},
		Playback: Playback{
			GraceSeconds:      defaultPlaybackGraceSeconds,
			CompletionEpsilon: defaultPlaybackEpsilon,
			CompletionDelayMS: defaultPlaybackCompletionDelay,
			SkipSeconds:       defaultPlaybackSkipSeconds,
			TickMS:            defaultPlaybackTickMS,
		},
		Flow: Flow{
			IntroDurationMS:          defaultIntroDurationMS,
			PrologueSkipAfterSeconds: defaultPrologueSkipAfterSeconds,
			PrologueFadeMS:           defaultPrologueFadeMS,
			OfferMenuShortcut:        true,
			MenuPollMS:               defaultMenuPollMS,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

// DefaultGates returns the bundled gates for seasons 2-4.
func DefaultGates() []Gate {
	return []Gate{
		{Unit: 2, WaitSeconds: defaultGateWaitSeconds, Code: "manoj2901", Hint: defaultGateHint},
		{Unit: 3, WaitSeconds: defaultGateWaitSeconds, Code: "manoj3101", Hint: defaultGateHint},
		{Unit: 4, WaitSeconds: defaultGateWaitSeconds, Code: "manoj2502", Hint: defaultGateHint},
	}
}
