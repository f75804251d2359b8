package game

// AssignRoles 为主持人以外的玩家分配角色，结构确定、抽取随机
func (e *Engine) AssignRoles(players []RosterEntry) (map[string]*Role, error) {
	if len(players) < e.catalog.rules.MinPlayers {
		return nil, ErrInsufficientPlayers.Errorf(
			"need at least %d players besides the narrator, got %d",
			e.catalog.rules.MinPlayers, len(players),
		)
	}

	pool, err := e.buildRolePool(len(players))
	if err != nil {
		return nil, err
	}

	e.rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	assignments := make(map[string]*Role, len(players))
	for i, p := range players {
		def, ok := e.catalog.Role(pool[i])
		if !ok {
			return nil, ErrMissingRole.Errorf("role %q is not in the catalog", pool[i])
		}
		assignments[p.ID] = def.instantiate()
	}

	return assignments, nil
}

// buildRolePool 生成与玩家人数等长的角色池（未打乱）
func (e *Engine) buildRolePool(playerCount int) ([]string, error) {
	rules := e.catalog.rules

	pool := make([]string, 0, playerCount)
	counts := make(map[string]int)
	add := func(id string) {
		pool = append(pool, id)
		counts[id]++
	}

	// 必需的稀缺角色各一个，再加一个黑手党
	for _, id := range rules.RequiredScarce {
		if _, ok := e.catalog.Role(id); !ok {
			return nil, ErrMissingRole.Errorf("required role %q is not in the catalog", id)
		}
		add(id)
	}
	add(rules.MafiaRole)

	mafiaSeats := max(1, playerCount/rules.MafiaDivisor)
	for range mafiaSeats - 1 {
		add(rules.MafiaRole)
	}

	if len(pool) > playerCount {
		return nil, ErrInsufficientPlayers.Errorf(
			"%d required roles do not fit %d players", len(pool), playerCount,
		)
	}

	filler := e.catalog.FillerRole()
	specials := e.catalog.assignable()

	for len(pool) < playerCount {
		if e.rng.Float64() >= rules.SpecialChance {
			add(filler)
			continue
		}

		candidates := make([]string, 0, len(specials))
		for _, r := range specials {
			if r.MaxPerGame > 0 && counts[r.ID] >= r.MaxPerGame {
				continue
			}
			candidates = append(candidates, r.ID)
		}

		if len(candidates) == 0 {
			add(filler)
			continue
		}

		add(candidates[e.rng.IntN(len(candidates))])
	}

	return pool, nil
}
