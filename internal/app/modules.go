package app

import (
	"github.com/vk/nodegridgo/internal/registry"
	"github.com/vk/nodegridgo/modules/imagefile"
	"github.com/vk/nodegridgo/modules/imagewrite"
	"github.com/vk/nodegridgo/modules/intvalue"
	"github.com/vk/nodegridgo/modules/print"
	"github.com/vk/nodegridgo/modules/threshold"
)

// coreModules is the definitive list of all node modules that are compiled
// into the nodegrid binary.
var coreModules = []registry.Module{
	&threshold.Module{},
	&imagefile.Module{},
	&intvalue.Module{},
	&imagewrite.Module{},
	&print.Module{},
}

// CoreModules returns a copy of the core module list.
func CoreModules() []registry.Module {
	return append([]registry.Module(nil), coreModules...)
}
