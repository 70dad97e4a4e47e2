package main

type ImportCmd struct {
	Urls        []string `arg:"positional,required" help:"urls to import"`
	Concurrency int      `arg:"-j,--concurrency" help:"number of concurrent imports" default:"4"`
}

type ServeCmd struct {
	Addr string   `arg:"--addr" help:"address of the server" default:"127.0.0.1:8080"`
	Urls []string `arg:"positional" help:"urls to import before serving"`
}

type FetchCmd struct {
	Url    string `arg:"positional,required" help:"url of the resource"`
	Offset int64  `arg:"--offset" help:"byte offset of the chunk" default:"0"`
	Length int64  `arg:"--length,required" help:"byte length of the chunk"`
	Out    string `arg:"-o,--out" help:"output file, stdout if empty"`
}

type Arguments struct {
	Import   *ImportCmd `arg:"subcommand:import" help:"import remote resources"`
	Serve    *ServeCmd  `arg:"subcommand:serve" help:"serve imported resources"`
	Fetch    *FetchCmd  `arg:"subcommand:fetch" help:"fetch a single chunk"`
	Config   string     `arg:"--config" help:"path to the configuration file"`
	Version  bool       `arg:"-v" help:"show version and exit"`
	LogLevel string     `arg:"--log-level" help:"set the log level" default:"info" valid:"debug,info,warn,error,fatal,panic"`
}

var version string
