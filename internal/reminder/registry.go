package reminder

// DefaultGenerators wires up every generator with a real in-repo
// backing implementation. Callers needing an output style or a
// compaction file reference construct those generators directly and
// append them, since both need caller-supplied state this package
// doesn't own.
func DefaultGenerators(changedFiles *FileTracker) []Generator {
	gens := []Generator{
		CriticalInstructionGenerator{},
		PlanModeEnterGenerator{},
		PlanModeExitGenerator{},
		PlanToolReminderGenerator{},
		NewChangedFilesGenerator(changedFiles),
		BackgroundTaskGenerator{},
		LSPDiagnosticsGenerator{},
		NestedMemoryGenerator{},
		AvailableSkillsGenerator{},
		NewAtMentionedFilesGenerator(),
		AgentMentionsGenerator{},
		InvokedSkillsGenerator{},
		TodoRemindersGenerator{},
		DelegateModeGenerator{},
		PlanVerificationGenerator{},
		TokenUsageGenerator{},
		AlreadyReadFilesGenerator{},
		BudgetUSDGenerator{},
	}
	gens = append(gens, NewSecurityGuidelinesGenerators()...)
	return gens
}
