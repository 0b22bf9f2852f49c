/*
 * babeld. Copyright (C) 2021-present
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation; either version 2 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License along
 * with this program; if not, write to the Free Software Foundation, Inc.,
 * 51 Franklin Street, Fifth Floor, Boston, MA 02110-1301 USA.
 */

package log

import "github.com/rs/zerolog"

// Zerolog adapts a zerolog.Logger to the Logger interface.
type Zerolog struct {
	L zerolog.Logger
}

func NewZerolog(l zerolog.Logger) Zerolog {
	return Zerolog{L: l}
}

func (z Zerolog) Debug(msg string, kv KV)  { z.event(z.L.Debug(), msg, kv) }
func (z Zerolog) Info(msg string, kv KV)   { z.event(z.L.Info(), msg, kv) }
func (z Zerolog) Notice(msg string, kv KV) { z.event(z.L.Info(), msg, kv) }
func (z Zerolog) Warn(msg string, kv KV)   { z.event(z.L.Warn(), msg, kv) }
func (z Zerolog) Error(msg string, kv KV)  { z.event(z.L.Error(), msg, kv) }

func (z Zerolog) event(e *zerolog.Event, msg string, kv KV) {
	for k, v := range kv {
		e = e.Interface(k, v)
	}
	e.Msg(msg)
}
