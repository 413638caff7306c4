// common.go
//
// Book outline service: books with nested index trees, JSON and XML import
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of livros.
// livros is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// livros is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with livros.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package handlers

import (
	"errors"
	"fmt"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/livros/internal/types"
)

// paramID parses a positive numeric route parameter. Anything else is a
// 404 since no such resource can exist.
func paramID(c *fiber.Ctx, name, resource string) (uint64, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, types.NewError(fiber.StatusNotFound, fmt.Sprintf("%s '%s' not found", resource, c.Params(name)), types.ErrTypeNotFound)
	}
	return id, nil
}

// fieldErrors flattens ozzo validation errors into field -> messages.
// Internal rule failures are returned as err.
func fieldErrors(err error) (map[string][]string, error) {
	if err == nil {
		return nil, nil
	}

	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return nil, err
	}

	out := make(map[string][]string, len(verrs))
	for field, ferr := range verrs {
		if ferr == nil {
			continue
		}
		var internal validation.InternalError
		if errors.As(ferr, &internal) {
			return nil, internal
		}
		out[field] = append(out[field], ferr.Error())
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}
