package bridge

import "github.com/behold-mycode/komari/kerror"

var kerrNotConnected = kerror.New("injector not connected")
