package types

// CmdLineGenerator is an interface for generating ipfw command line args for a rule object
type CmdLineGenerator interface {
	// GenCmdLineArgs returns ipfw command line arguments which can be incorporated
	// when invoking ipfw command via shell
	GenCmdLineArgs() []string
}
