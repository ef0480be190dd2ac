package app

import (
	"github.com/specialistvlad/smartnodego/internal/catalog"
	"github.com/specialistvlad/smartnodego/modules/http_client"
	"github.com/specialistvlad/smartnodego/modules/print"
	"github.com/specialistvlad/smartnodego/modules/remotegpio"
	"github.com/specialistvlad/smartnodego/modules/sysinfo"
	"github.com/specialistvlad/smartnodego/modules/virtual"
)

// coreModules is the definitive list of all units that are compiled into
// the smartnodego binary.
var coreModules = []catalog.Module{
	&virtual.Module{},
	&print.Module{},
	&sysinfo.Module{},
	&http_client.Module{},
	&remotegpio.Module{},
}
